package kafka

import (
	"testing"

	"github.com/Shopify/sarama/mocks"
	"github.com/linkedin/goavro/v2"
	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

var artifact = &brapi2isa.Artifact{Path: "T/t_s1.txt", Lines: []string{"Variable ID\tVariable Name", "v1\theight"}}

func TestSinkRaw(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "Variable ID\tVariable Name\nv1\theight\n" {
			return errors.Errorf("unexpected value %q", val)
		}
		return nil
	})
	s := NewSink()
	if err := s.OpenWith(producer); err != nil {
		t.Fatalf("opening: %v", err)
	}
	if err := s.Write(artifact); err != nil {
		t.Fatalf("writing: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
}

func TestSinkAvro(t *testing.T) {
	codec, err := goavro.NewCodec(ArtifactSchema)
	if err != nil {
		t.Fatal(err)
	}
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		native, _, err := codec.NativeFromBinary(val)
		if err != nil {
			return err
		}
		rec := native.(map[string]interface{})
		if rec["path"] != "T/t_s1.txt" {
			return errors.Errorf("unexpected path %v", rec["path"])
		}
		if lines := rec["lines"].([]interface{}); len(lines) != 2 || lines[1] != "v1\theight" {
			return errors.Errorf("unexpected lines %v", lines)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	s := NewSink()
	s.Encoding = EncodingAvro
	if err := s.OpenWith(producer); err != nil {
		t.Fatalf("opening: %v", err)
	}
	if err := s.Write(artifact); err != nil {
		t.Fatalf("writing: %v", err)
	}
	if err := s.Write(artifact); err == nil {
		t.Fatal("expected send failure")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
}

func TestSinkUnknownEncoding(t *testing.T) {
	s := NewSink()
	s.Encoding = "xml"
	if err := s.OpenWith(mocks.NewSyncProducer(t, nil)); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
	if err := s.Write(artifact); err == nil {
		t.Fatal("expected error writing to unopened sink")
	}
}
