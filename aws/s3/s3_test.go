package s3

import (
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

type fakeUploader struct {
	objects map[string]string
	fail    bool
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(aws.BackgroundContext(), in, opts...)
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.fail {
		return nil, errors.New("access denied")
	}
	b, err := ioutil.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = string(b)
	return &s3manager.UploadOutput{Location: *in.Key}, nil
}

func TestSink(t *testing.T) {
	up := &fakeUploader{objects: make(map[string]string)}
	s, err := NewSink(OptSinkBucket("brapi-out"), OptSinkPrefix("runs/1"), OptSinkRegion("eu-west-1"), OptSinkUploader(up))
	if err != nil {
		t.Fatalf("getting new sink: %v", err)
	}
	if s.region != "eu-west-1" {
		t.Fatalf("wrong region name: %s", s.region)
	}

	err = s.Write(&brapi2isa.Artifact{Path: "Trial/d_s1_plot.txt", Lines: []string{"h1\th2", "1\t2"}})
	if err != nil {
		t.Fatalf("writing: %v", err)
	}
	got, ok := up.objects["brapi-out/runs/1/Trial/d_s1_plot.txt"]
	if !ok {
		t.Fatalf("object not uploaded: %v", up.objects)
	}
	if got != "h1\th2\n1\t2\n" {
		t.Fatalf("unexpected object body: %q", got)
	}

	up.fail = true
	if err := s.Write(&brapi2isa.Artifact{Path: "x"}); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestNewSinkNoBucket(t *testing.T) {
	if _, err := NewSink(OptSinkUploader(&fakeUploader{})); err == nil {
		t.Fatal("expected error without bucket")
	}
}
