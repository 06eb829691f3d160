package brapi

import (
	"encoding/json"
	"testing"
)

func TestDecodePage(t *testing.T) {
	tests := []struct {
		body       string
		totalPages int
		records    int
		err        bool
	}{
		{body: `{"metadata":{"pagination":{"totalPages":3}},"result":{"data":[{},{}]}}`, totalPages: 3, records: 2},
		{body: `{"metadata":{"pagination":{"totalCount":7}},"result":{"data":[]}}`, totalPages: 3, records: 0},
		{body: `{"metadata":{"pagination":{"totalCount":0,"totalPages":0}},"result":{"data":[]}}`, totalPages: 0, records: 0},
		{body: `{"metadata":{},"result":{"studyDbId":"s1"}}`, totalPages: -1, records: 1},
		{body: `{"metadata":{},"result":null}`, totalPages: -1, records: 0},
		{body: `{"metadata":{"pagination":{"totalCount":0,"totalPages":1}},"result":{"data":null}}`, totalPages: 1, records: 0},
		{body: `{"metadata":{"pagination":{"pageSize":2,"totalCount":5}},"result":{"data":[{},{}]}}`, totalPages: 3, records: 2},
		{body: `{"metadata":{"pagination":{"pageSize":0,"totalCount":5}},"result":{"data":[]}}`, totalPages: 2, records: 0},
		{body: `{"result":{"data":"x"}}`, err: true},
		{body: `{"metadata":{"pagination":{"totalPages":"x"}}}`, err: true},
		{body: `{"result":[1,2]}`, err: true},
		{body: `not json`, err: true},
	}
	for i, tst := range tests {
		p, err := decodePage([]byte(tst.body), 3)
		if tst.err {
			if err == nil {
				t.Errorf("test %d: expected error", i)
			}
			continue
		}
		if err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		if p.totalPages != tst.totalPages || len(p.records) != tst.records {
			t.Errorf("test %d: got %d pages, %d records", i, p.totalPages, len(p.records))
		}
	}
}

func TestDecodePageKeepsNumbers(t *testing.T) {
	p, err := decodePage([]byte(`{"result":{"data":[{"X":1.50,"id":12345678901234567890}]}}`), 10)
	if err != nil {
		t.Fatal(err)
	}
	rec := p.records[0].(map[string]interface{})
	if rec["X"] != json.Number("1.50") || rec["id"] != json.Number("12345678901234567890") {
		t.Fatalf("numbers not kept verbatim: %#v", rec)
	}
}
