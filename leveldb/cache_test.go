package leveldb_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"
	"testing"

	"github.com/pilosa/brapi2isa/leveldb"
	"github.com/pilosa/brapi2isa/test"
)

func TestCache(t *testing.T) {
	dir, err := ioutil.TempDir("", "levelcache")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)

	c, err := leveldb.NewCache(dir)
	test.ErrNil(t, err, "opening cache")
	defer c.Close()

	wg := sync.WaitGroup{}
	stored := make([]bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			stored[i], err = c.Put("g1", fmt.Sprintf("A%d", i))
			if err != nil {
				t.Errorf("put %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	n := 0
	winner := ""
	for i, s := range stored {
		if s {
			n++
			winner = fmt.Sprintf("A%d", i)
		}
	}
	test.MustBe(t, 1, n, "exactly one Put stores")
	acc, ok, err := c.Get("g1")
	test.ErrNil(t, err, "get")
	test.MustBe(t, true, ok)
	test.MustBe(t, winner, acc)

	_, ok, err = c.Get("g2")
	test.ErrNil(t, err, "get missing")
	test.MustBe(t, false, ok)
}
