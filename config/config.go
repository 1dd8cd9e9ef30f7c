// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultMinMarkers is the coverage cutoff below which genomes are reported
	DefaultMinMarkers = 12

	// DefaultFiller is the missing-data symbol of the supermatrix
	DefaultFiller = "?"

	// DefaultRAxMLBootstraps is the number of rapid bootstrap replicates
	DefaultRAxMLBootstraps = 100

	// DefaultRAxMLSeed seeds raxml's parsimony and bootstrap searches
	DefaultRAxMLSeed = 12345
)

// Executables are the paths to the external programs.
type Executables struct {
	Prodigal  string `mapstructure:"prodigal"`
	HMMSearch string `mapstructure:"hmmsearch"`
	Muscle    string `mapstructure:"muscle"`
	FastTree  string `mapstructure:"fasttree"`
	RAxML     string `mapstructure:"raxml"`
}

// Config is the root-level settings struct and is a mix
// of settings available in the settings file and those
// available from the command line
type Config struct {
	// directory with the .faa / .fna genomes
	Input string `mapstructure:"input"`

	// run directory, must not exist yet
	Output string `mapstructure:"output"`

	// archaea, bacteria or custom
	Domain string `mapstructure:"domain"`

	// directory with the marker profiles
	MarkersDir string `mapstructure:"markers-dir"`

	// genomes with fewer markers than this are reported
	MinMarkers int `mapstructure:"min-markers"`

	// number of concurrent external tool invocations
	Threads int `mapstructure:"threads"`

	// missing-data symbol for absent markers
	Filler string `mapstructure:"filler"`

	// fasttree, raxml or none
	Phylogeny string `mapstructure:"phylogeny"`

	// rapid bootstrap replicates of a raxml run
	RAxMLBootstraps int `mapstructure:"raxml-bootstraps"`

	// random number seed of a raxml run
	RAxMLSeed int `mapstructure:"raxml-seed"`

	// debug, info, warn or error
	LogLevel string `mapstructure:"log-level"`

	// log debug messages and draw progress bars
	Verbose bool `mapstructure:"verbose"`

	Executables Executables `mapstructure:"executables"`
}

// SetDefaults registers default values with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("domain", "archaea")
	v.SetDefault("markers-dir", "markers")
	v.SetDefault("min-markers", DefaultMinMarkers)
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("filler", DefaultFiller)
	v.SetDefault("phylogeny", "fasttree")
	v.SetDefault("raxml-bootstraps", DefaultRAxMLBootstraps)
	v.SetDefault("raxml-seed", DefaultRAxMLSeed)
	v.SetDefault("log-level", "info")
	v.SetDefault("executables.prodigal", "prodigal")
	v.SetDefault("executables.hmmsearch", "hmmsearch")
	v.SetDefault("executables.muscle", "muscle")
	v.SetDefault("executables.fasttree", "FastTree")
	v.SetDefault("executables.raxml", "raxmlHPC-PTHREADS")
}

// New returns a new Config struct populated by Viper settings (either
// from the settings file and/or command line arguments).
func New(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unable to decode settings")
	}

	c.Domain = strings.ToLower(strings.TrimSpace(c.Domain))
	c.Phylogeny = strings.ToLower(strings.TrimSpace(c.Phylogeny))
	return &c, nil
}

// Validate checks the settings needed by a phylogeny run.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("no input genome directory")
	}
	if c.Output == "" {
		return errors.New("no output directory")
	}

	switch c.Domain {
	case "archaea", "bacteria", "custom":
	default:
		return errors.Errorf("unknown domain %q: use archaea, bacteria or custom", c.Domain)
	}

	switch c.Phylogeny {
	case "fasttree", "raxml", "none":
	default:
		return errors.Errorf("unknown phylogeny program %q: use fasttree, raxml or none", c.Phylogeny)
	}

	if len(c.Filler) != 1 {
		return errors.Errorf("filler must be a single symbol, got %q", c.Filler)
	}
	if c.Threads < 1 {
		return errors.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.Phylogeny == "raxml" && (c.RAxMLBootstraps < 1 || c.RAxMLSeed < 1) {
		return errors.Errorf("raxml-bootstraps and raxml-seed must be at least 1, got %d and %d", c.RAxMLBootstraps, c.RAxMLSeed)
	}
	if c.MinMarkers < 0 {
		return errors.Errorf("min-markers must not be negative, got %d", c.MinMarkers)
	}

	return nil
}
