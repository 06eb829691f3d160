// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package brapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

// pagination is the metadata.pagination object of a BrAPI response.
type pagination struct {
	CurrentPage *json.Number `json:"currentPage"`
	PageSize    *json.Number `json:"pageSize"`
	TotalCount  *json.Number `json:"totalCount"`
	TotalPages  *json.Number `json:"totalPages"`
}

type envelope struct {
	Metadata struct {
		Pagination pagination `json:"pagination"`
	} `json:"metadata"`
	Result json.RawMessage `json:"result"`
}

// page is one decoded response: its records and the total page count it
// announces, or -1 if it announces nothing.
type page struct {
	records    []interface{}
	totalPages int
}

func decodeJSON(b []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodePage decodes a BrAPI envelope. Records are result.data, or result
// itself when it is an object without a data key. A null data yields no
// records. When only totalCount is announced, pages are counted with the
// pageSize the server reports, or with pageSize if it reports none.
func decodePage(b []byte, pageSize int) (*page, error) {
	env := envelope{}
	if err := decodeJSON(b, &env); err != nil {
		return nil, errors.Wrap(err, "decoding envelope")
	}
	p := &page{totalPages: -1}
	pg := env.Metadata.Pagination
	if pg.TotalPages != nil {
		n, err := pg.TotalPages.Int64()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing totalPages '%s'", *pg.TotalPages)
		}
		p.totalPages = int(n)
	} else if pg.TotalCount != nil {
		n, err := pg.TotalCount.Int64()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing totalCount '%s'", *pg.TotalCount)
		}
		if pg.PageSize != nil {
			if ps, err := pg.PageSize.Int64(); err == nil && ps > 0 {
				pageSize = int(ps)
			}
		}
		p.totalPages = int((n + int64(pageSize) - 1) / int64(pageSize))
	}

	if len(env.Result) == 0 || string(env.Result) == "null" {
		return p, nil
	}
	var result interface{}
	if err := decodeJSON(env.Result, &result); err != nil {
		return nil, errors.Wrap(err, "decoding result")
	}
	obj, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("result is not an object, but a %T", result)
	}
	data, ok := obj["data"]
	if !ok {
		p.records = []interface{}{obj}
		return p, nil
	}
	switch td := data.(type) {
	case nil:
	case []interface{}:
		p.records = td
	default:
		return nil, errors.Errorf("result.data is not an array, but a %T", data)
	}
	return p, nil
}

// PageSource is a brapi2isa.Source which walks the pages of a paginated BrAPI
// resource. Pages are requested one at a time, in ascending order, only when
// the records of the previous page have all been returned. The total number of
// pages is taken from the first response. Any error is sticky.
type PageSource struct {
	client   *Client
	ctx      context.Context
	method   string
	resource string
	params   url.Values
	body     map[string]interface{}

	page       int
	totalPages int
	buf        []interface{}
	err        error
}

var _ brapi2isa.Source = &PageSource{}

// Paginate returns a PageSource over resource. For GET the page and pageSize
// parameters are sent in the query string; for POST and PUT they are merged
// into body, which is sent as JSON.
func (c *Client) Paginate(ctx context.Context, resource string, params url.Values, body map[string]interface{}, method string) *PageSource {
	if method == "" {
		method = http.MethodGet
	}
	return &PageSource{
		client:     c,
		ctx:        ctx,
		method:     method,
		resource:   resource,
		params:     params,
		body:       body,
		totalPages: -1,
	}
}

// Record implements brapi2isa.Source.
func (s *PageSource) Record() (interface{}, error) {
	for len(s.buf) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		if s.totalPages >= 0 && s.page >= s.totalPages {
			return nil, io.EOF
		}
		if err := s.fetch(); err != nil {
			s.err = err
			return nil, err
		}
	}
	rec := s.buf[0]
	s.buf = s.buf[1:]
	return rec, nil
}

func (s *PageSource) fetch() error {
	ps := s.client.cfg.PageSize
	params := url.Values{}
	for k, v := range s.params {
		params[k] = v
	}
	var body interface{}
	switch s.method {
	case http.MethodGet:
		params.Set("page", strconv.Itoa(s.page))
		params.Set("pageSize", strconv.Itoa(ps))
	case http.MethodPost, http.MethodPut:
		b := make(map[string]interface{}, len(s.body)+2)
		for k, v := range s.body {
			b[k] = v
		}
		b["page"] = s.page
		b["pageSize"] = ps
		body = b
	default:
		return errors.Errorf("unsupported method %s", s.method)
	}

	raw, err := s.client.do(s.ctx, s.method, s.resource, params, body)
	if err != nil {
		return errors.Wrapf(err, "getting page %d of %s", s.page, s.resource)
	}
	p, err := decodePage(raw, ps)
	if err != nil {
		return errors.Wrapf(err, "decoding page %d of %s", s.page, s.resource)
	}
	if s.totalPages < 0 {
		s.totalPages = p.totalPages
		if s.totalPages < 0 {
			// nothing announced, the first page is all there is
			s.totalPages = 1
		}
		s.client.log.Debugf("%s: %d pages of %d", s.resource, s.totalPages, ps)
	}
	s.page++
	if s.totalPages == 0 {
		return nil
	}
	s.buf = p.records
	return nil
}
