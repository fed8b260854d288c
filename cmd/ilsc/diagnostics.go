package main

import (
	"io"

	"ilsc/internal/diag"
	"ilsc/internal/driver"
)

// printDiagnostics renders the diagnostics of every result, file by file.
func printDiagnostics(w io.Writer, results []*driver.Result, color bool) error {
	for _, r := range results {
		if r == nil || r.Bag.Len() == 0 {
			continue
		}
		r.Bag.Sort()
		r.Bag.Dedup()
		if err := diag.Render(w, r.Bag.Items(), diag.RenderOptions{Color: color}); err != nil {
			return err
		}
	}
	return nil
}
