package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// write renders results in the configured format.
func (a *App) write(results []*StreamResult) error {
	switch a.config.Format {
	case FormatJSON:
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case FormatYAML:
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(a.outW, results)
	}
}

// writeText prints one tab-separated line per placement followed by the tree.
func writeText(w io.Writer, results []*StreamResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "# %s\n", res.Source)
		for _, p := range res.Placements {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Prefix, p.Qualifier, displayEndtag(p.Endtag))
		}
		for _, f := range res.Failures {
			fmt.Fprintf(tw, "%s\tline %d\t%s\n", f.Prefix, f.Line, f.Error)
		}

		for j, n := range res.Tree.Nodes {
			label := n.ID
			if j > 0 && j <= len(res.Tree.Fieldsplits) {
				label = fmt.Sprintf("%s (%s)", n.ID, res.Tree.Fieldsplits[j-1])
			}
			fmt.Fprintf(tw, "node %s\n", label)
			for _, rec := range n.Records {
				levels := ""
				if rec.Levels > 0 {
					levels = fmt.Sprintf("levels=%d", rec.Levels)
				}
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", displayEndtag(rec.Endtag), rec.Prefix, levels)
			}
		}
	}
	return tw.Flush()
}

// displayEndtag renders the empty endtag of a top-level component.
func displayEndtag(endtag string) string {
	if endtag == "" {
		return "-"
	}
	return endtag
}
