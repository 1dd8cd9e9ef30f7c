package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/panel"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// markersCmd is for listing the marker panel of a domain
var markersCmd = &cobra.Command{
	Use:                        "markers",
	Short:                      "List the markers of a panel and their profile lengths",
	RunE:                       markersExec,
	SuggestionsMinimumDistance: 2,
	Long: `List the markers of the --domain panel, resolved against --markers-dir.
The length is the model length of each profile, the number of filler symbols
a marker gets when no genome has a hit for it.`,
	Aliases: []string{"ls", "panel"},
	Example: "  metabolishmm markers -d bacteria -m markers",
}

// markersExec prints one row per marker.
func markersExec(cmd *cobra.Command, args []string) error {
	d, err := panel.ParseDomain(viper.GetString("domain"))
	if err != nil {
		return err
	}
	p, err := panel.Load(viper.GetString("markers-dir"), d)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "marker\tlength\tprofile\n")
	for _, m := range p.Markers {
		length := "-"
		if n, err := panel.ProfileLength(m.Profile); err == nil {
			length = fmt.Sprint(n)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, length, m.Profile)
	}
	return w.Flush()
}

func init() {
	RootCmd.AddCommand(markersCmd)
}
