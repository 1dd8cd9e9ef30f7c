// Package cmd is for command line interactions with the metabolishmm application
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kenkeni-ZJU/metabolisHMM/config"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "metabolishmm",
	Short: `Build genome phylogenies from single-copy ribosomal protein markers.
Search marker profiles in each genome, align and concatenate the hits into a supermatrix`,
	Version:           "0.2.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: readSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

// readSettings merges the settings file, if one was passed, under the flags.
func readSettings(cmd *cobra.Command, args []string) error {
	path := viper.GetString("settings")
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read settings file %s", path)
	}
	return nil
}

// settings returns the merged config and a logger at its level.
func settings() (*config.Config, *log.Logger, error) {
	c, err := config.New(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(c)
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}

// newLogger returns a stderr logger. verbose forces debug output.
func newLogger(c *config.Config) (*log.Logger, error) {
	level := c.LogLevel
	if c.Verbose {
		level = "debug"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown log-level %q", c.LogLevel)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "metabolishmm",
	})
	logger.SetLevel(lvl)
	return logger, nil
}

// set flags shared by every command
func init() {
	config.SetDefaults(viper.GetViper())

	flags := RootCmd.PersistentFlags()
	flags.StringP("settings", "s", "", "YAML settings file, overridden by flags")
	flags.BoolP("verbose", "v", false, "log debug messages and draw progress bars")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.IntP("threads", "t", 0, "concurrent tool invocations (default: number of CPUs)")

	flags.StringP("input", "i", "", "directory of .faa (protein) and .fna (nucleotide) genomes")
	flags.StringP("output", "o", "", "run directory to create; must not exist")
	flags.StringP("domain", "d", "archaea", "marker panel: archaea, bacteria or custom")
	flags.StringP("markers-dir", "m", "markers", "directory of marker profiles (<dir>/<domain>/*.hmm, or <dir>/*.hmm for custom)")

	for _, name := range []string{"settings", "verbose", "log-level", "threads", "input", "output", "domain", "markers-dir"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}
