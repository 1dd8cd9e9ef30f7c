package cmd

import (
	"fmt"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/pipeline"
	"github.com/spf13/cobra"
)

// matrixCmd is for counting marker hits without building a phylogeny
var matrixCmd = &cobra.Command{
	Use:                        "matrix",
	Short:                      "Count the hits of every marker in every genome",
	RunE:                       matrixExec,
	SuggestionsMinimumDistance: 3,
	Long: `Search every marker profile in every genome and write the number of hits
above the trusted cutoff to marker-hit-counts.csv, one row per genome and one
column per marker. No hits are selected or aligned.`,
	Aliases: []string{"counts"},
	Example: "  metabolishmm matrix -i genomes -o counts1 -d custom -m my-markers",
}

// matrixExec counts hits from the merged settings.
func matrixExec(cmd *cobra.Command, args []string) error {
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

	if _, err := pipeline.CountHits(cmd.Context(), opts); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), pipeline.Layout{Root: c.Output}.HitCounts())
	return err
}

func init() {
	RootCmd.AddCommand(matrixCmd)
}
