package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func Test_New(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	contents := `domain: Bacteria
min-markers: 10
phylogeny: RAxML
raxml-seed: 42
executables:
  muscle: /opt/muscle3.8
`
	if err := os.WriteFile(settings, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(settings)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	c, err := New(v)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.Domain != "bacteria" {
		t.Errorf("Domain = %q, want bacteria", c.Domain)
	}
	if c.Phylogeny != "raxml" {
		t.Errorf("Phylogeny = %q, want raxml", c.Phylogeny)
	}
	if c.MinMarkers != 10 {
		t.Errorf("MinMarkers = %d, want 10", c.MinMarkers)
	}
	if c.Filler != DefaultFiller {
		t.Errorf("Filler = %q, want %q", c.Filler, DefaultFiller)
	}
	if c.RAxMLSeed != 42 || c.RAxMLBootstraps != DefaultRAxMLBootstraps {
		t.Errorf("RAxML seed = %d bootstraps = %d, want 42 and %d", c.RAxMLSeed, c.RAxMLBootstraps, DefaultRAxMLBootstraps)
	}
	if c.Executables.Muscle != "/opt/muscle3.8" || c.Executables.HMMSearch != "hmmsearch" {
		t.Errorf("Executables = %+v", c.Executables)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Input:      "genomes",
			Output:     "out",
			Domain:     "archaea",
			MinMarkers: DefaultMinMarkers,
			Threads:    4,
			Filler:     "?",
			Phylogeny:  "fasttree",

			RAxMLBootstraps: DefaultRAxMLBootstraps,
			RAxMLSeed:       DefaultRAxMLSeed,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no input", func(c *Config) { c.Input = "" }, true},
		{"no output", func(c *Config) { c.Output = "" }, true},
		{"unknown domain", func(c *Config) { c.Domain = "eukaryota" }, true},
		{"custom domain", func(c *Config) { c.Domain = "custom" }, false},
		{"unknown phylogeny", func(c *Config) { c.Phylogeny = "iqtree" }, true},
		{"no phylogeny", func(c *Config) { c.Phylogeny = "none" }, false},
		{"long filler", func(c *Config) { c.Filler = "??" }, true},
		{"empty filler", func(c *Config) { c.Filler = "" }, true},
		{"no threads", func(c *Config) { c.Threads = 0 }, true},
		{"negative cutoff", func(c *Config) { c.MinMarkers = -1 }, true},
		{"raxml without bootstraps", func(c *Config) { c.Phylogeny = "raxml"; c.RAxMLBootstraps = 0 }, true},
		{"raxml without seed", func(c *Config) { c.Phylogeny = "raxml"; c.RAxMLSeed = 0 }, true},
		{"raxml", func(c *Config) { c.Phylogeny = "raxml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
