package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/brapi2isa/convert"
	"github.com/pilosa/brapi2isa/test"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "brapi2isa-cmd")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)
	conf := filepath.Join(dir, "conf.toml")
	err = ioutil.WriteFile(conf, []byte(`
endpoint = "https://brapi.example.org/brapi/v1/"
studies = ["s1", "s2"]
page-size = 50
cache = "bolt"
`), 0644)
	test.ErrNil(t, err, "writing config")

	os.Setenv("BRAPI2ISA_CACHE", "leveldb")
	defer os.Unsetenv("BRAPI2ISA_CACHE")

	m := convert.NewMain()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	test.ErrNil(t, commandeer.Flags(flags, m), "defining flags")
	test.ErrNil(t, flags.Parse([]string{"--config", conf, "--page-size", "20"}), "parsing flags")

	test.ErrNil(t, loadConfig(viper.New(), flags), "loading config")
	test.MustBe(t, "https://brapi.example.org/brapi/v1/", m.Endpoint, "endpoint from file")
	test.MustBe(t, []string{"s1", "s2"}, m.Studies, "studies from file")
	test.MustBe(t, 20, m.PageSize, "page size from flag")
	test.MustBe(t, "leveldb", m.Cache, "cache from env")
	test.MustBe(t, 5, m.MaxRetries, "default retries")
}

func TestLoadConfigYAML(t *testing.T) {
	dir, err := ioutil.TempDir("", "brapi2isa-cmd")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)
	conf := filepath.Join(dir, "conf.yaml")
	err = ioutil.WriteFile(conf, []byte("kafka-hosts:\n  - k1:9092\n  - k2:9092\nverbose: true\n"), 0644)
	test.ErrNil(t, err, "writing config")
	os.Setenv("BRAPI2ISA_CONFIG", conf)
	defer os.Unsetenv("BRAPI2ISA_CONFIG")

	m := convert.NewMain()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	test.ErrNil(t, commandeer.Flags(flags, m), "defining flags")
	test.ErrNil(t, flags.Parse(nil), "parsing flags")

	test.ErrNil(t, loadConfig(viper.New(), flags), "loading config")
	test.MustBe(t, conf, m.Config, "config from env")
	test.MustBe(t, []string{"k1:9092", "k2:9092"}, m.KafkaHosts)
	test.MustBe(t, true, m.Verbose)
}

func TestLoadConfigMissingFile(t *testing.T) {
	m := convert.NewMain()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	test.ErrNil(t, commandeer.Flags(flags, m), "defining flags")
	test.ErrNil(t, flags.Parse([]string{"--config", "/nonexistent/brapi2isa.toml"}), "parsing flags")
	if err := loadConfig(viper.New(), flags); err == nil {
		t.Fatal("expected error reading missing configuration file")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	rc := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	names := map[string]bool{}
	for _, c := range rc.Commands() {
		names[c.Name()] = true
	}
	for _, n := range []string{"convert", "traits", "levels"} {
		if !names[n] {
			t.Fatalf("missing subcommand %s", n)
		}
	}
}
