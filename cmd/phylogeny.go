package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/Kenkeni-ZJU/metabolisHMM/config"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/panel"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/pipeline"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/tools"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// phylogenyCmd is for building the supermatrix and tree of a directory of genomes
var phylogenyCmd = &cobra.Command{
	Use:                        "phylogeny",
	Short:                      "Build a ribosomal protein supermatrix and tree from a directory of genomes",
	RunE:                       phylogenyExec,
	SuggestionsMinimumDistance: 3,
	Long: `Build a concatenated alignment of single-copy ribosomal proteins and infer a tree.

Nucleotide genomes (.fna) are gene-called with prodigal. Every genome's proteins are
renamed to <genome>_<serial> and searched with each marker profile using hmmsearch's
trusted cutoffs. The top hit per genome and marker is kept, each marker is aligned with
muscle, and the alignments are concatenated. Genomes without a hit for a marker get
filler symbols for that marker's columns.

Genomes with fewer markers than --min-markers are listed in low-coverage-genomes.txt
but stay in the supermatrix.`,
	Aliases: []string{"tree", "run"},
	Example: "  metabolishmm phylogeny -i genomes -o run1 -d bacteria -m markers -p raxml",
}

// phylogenyExec runs a phylogeny from the merged settings.
func phylogenyExec(cmd *cobra.Command, args []string) error {
	c, logger, err := settings()
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	opts, err := options(c, logger)
	if err != nil {
		return err
	}
	opts.TreeBuilder = treeBuilder(c)

	res, err := pipeline.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "genomes\t%d\n", len(res.Matrix.Genomes))
	fmt.Fprintf(w, "markers\t%d\n", len(res.Matrix.Blocks))
	fmt.Fprintf(w, "columns\t%s\n", humanize.Comma(int64(res.Matrix.Width)))
	fmt.Fprintf(w, "low coverage\t%d\n", len(res.LowCoverage))
	fmt.Fprintf(w, "supermatrix\t%s\n", res.Layout.Supermatrix())
	if opts.TreeBuilder != nil {
		fmt.Fprintf(w, "tree\t%s\n", res.Layout.Tree())
	}
	return w.Flush()
}

// options turns settings into pipeline options. Tree inference is left to the caller.
func options(c *config.Config, logger *log.Logger) (pipeline.Options, error) {
	d, err := panel.ParseDomain(c.Domain)
	if err != nil {
		return pipeline.Options{}, err
	}
	p, err := panel.Load(c.MarkersDir, d)
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Input:      c.Input,
		Output:     c.Output,
		Panel:      p,
		MinMarkers: c.MinMarkers,
		Threads:    c.Threads,
		Filler:     c.Filler[0],
		GeneCaller: tools.Prodigal{Path: c.Executables.Prodigal},
		Searcher:   tools.HMMSearch{Path: c.Executables.HMMSearch, CPUs: 1},
		Aligner:    tools.Muscle{Path: c.Executables.Muscle},
		Logger:     logger,
		Progress:   c.Verbose,
	}, nil
}

// treeBuilder returns the configured tree program, nil for "none".
func treeBuilder(c *config.Config) tools.TreeBuilder {
	switch c.Phylogeny {
	case "fasttree":
		return tools.FastTree{Path: c.Executables.FastTree}
	case "raxml":
		return tools.RAxML{
			Path:       c.Executables.RAxML,
			Threads:    c.Threads,
			Bootstraps: c.RAxMLBootstraps,
			Seed:       c.RAxMLSeed,
		}
	default:
		return nil
	}
}

// set flags
func init() {
	phylogenyCmd.Flags().Int("min-markers", config.DefaultMinMarkers, "report genomes with fewer markers than this")
	phylogenyCmd.Flags().String("filler", config.DefaultFiller, "missing-data symbol for absent markers")
	phylogenyCmd.Flags().StringP("phylogeny", "p", "fasttree", "tree program: fasttree, raxml or none")
	phylogenyCmd.Flags().Int("raxml-bootstraps", config.DefaultRAxMLBootstraps, "rapid bootstrap replicates for raxml")
	phylogenyCmd.Flags().Int("raxml-seed", config.DefaultRAxMLSeed, "random number seed for raxml")

	viper.BindPFlag("min-markers", phylogenyCmd.Flags().Lookup("min-markers"))
	viper.BindPFlag("filler", phylogenyCmd.Flags().Lookup("filler"))
	viper.BindPFlag("phylogeny", phylogenyCmd.Flags().Lookup("phylogeny"))
	viper.BindPFlag("raxml-bootstraps", phylogenyCmd.Flags().Lookup("raxml-bootstraps"))
	viper.BindPFlag("raxml-seed", phylogenyCmd.Flags().Lookup("raxml-seed"))

	RootCmd.AddCommand(phylogenyCmd)
}
