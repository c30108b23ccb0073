package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ygrebnov/appsize"
)

// writeReport prints one line per entry in the given order, followed by the total.
func writeReport(w io.Writer, entries []appsize.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "APP\tKEY\tSIZE\tLOCATION")

	var total uint64
	for _, e := range entries {
		loc := "internal"
		if e.External {
			loc = "external"
		}
		total += uint64(e.Size)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Label, e.Key, humanize.IBytes(uint64(e.Size)), loc)
	}
	_, _ = fmt.Fprintf(tw, "\t%s apps\t%s\t\n", humanize.Comma(int64(len(entries))), humanize.IBytes(total))
	return tw.Flush()
}
