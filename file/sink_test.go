package file_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/file"
	"github.com/pilosa/brapi2isa/test"
)

func TestSink(t *testing.T) {
	dir, err := ioutil.TempDir("", "filesink")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)

	root := filepath.Join(dir, "out")
	s, err := file.NewSink(file.OptSinkRoot(root))
	test.ErrNil(t, err, "making sink")
	test.MustBe(t, root, s.Root())

	a := &brapi2isa.Artifact{Path: "Trial 1/t_s1.txt", Lines: []string{"a\tb", "c\td"}}
	test.ErrNil(t, s.Write(a), "writing")
	a.Lines = []string{"x"}
	test.ErrNil(t, s.Write(a), "overwriting")
	test.ErrNil(t, s.Close(), "closing")

	b, err := ioutil.ReadFile(filepath.Join(root, "Trial 1", "t_s1.txt"))
	test.ErrNil(t, err, "reading back")
	test.MustBe(t, "x\n", string(b))
}

func TestSinkEmptyRoot(t *testing.T) {
	if _, err := file.NewSink(file.OptSinkRoot("")); err == nil {
		t.Fatal("expected error for empty root")
	}
}
