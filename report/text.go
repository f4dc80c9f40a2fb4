// Package report renders analysis results as console text and as HTML
// charts. Formatting lives here so the numeric packages stay presentation
// free.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-msquant/pipeline"
)

// Percent formats a fraction in [0, 1] as a percentage with one decimal,
// e.g. 0.973 -> "97.3 %".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f %%", 100*fraction)
}

// WriteText renders the per-sample fractions and group means of a report as
// aligned console text.
func WriteText(w io.Writer, rep *pipeline.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, group := range rep.Groups {
		fmt.Fprintf(tw, "group %s (%d samples, %d failed)\n", group.Name, len(group.Files), group.Failed)
		fmt.Fprintf(tw, "  sample\t%s\t%s\t\n", rep.Labels[0], rep.Labels[1])

		for i, file := range group.Files {
			if group.RowErrors[i] != nil {
				fmt.Fprintf(tw, "  %s\t-\t-\tFAILED: %v\n", file, group.RowErrors[i])
				continue
			}

			f := group.Fractions[i]
			fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", file, Percent(f[0]), Percent(f[1]))
		}

		if group.Mean != nil {
			fmt.Fprintf(tw, "  mean\t%s\t%s\t\n", Percent(group.Mean[0]), Percent(group.Mean[1]))
		} else {
			fmt.Fprintf(tw, "  mean\t-\t-\tno sample row solved\n")
		}

		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
