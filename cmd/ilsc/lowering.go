package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
	"ilsc/internal/parser"
)

// lowerFile parses and lowers one file for the inspection commands. The
// full IR is returned with prune=false.
func lowerFile(ctx context.Context, path string, prune bool) (*ir.Context, []ir.Node, error) {
	// #nosec G304 -- path comes from the command line
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, diag.InFile(diag.Errorf(diag.IOLoadFileError, 0, "failed to load file: %v", err), path)
	}
	prog, err := parser.Parse(path, src)
	if err != nil {
		return nil, nil, err
	}
	c := ir.NewContext(path)
	if err := ir.Lower(ctx, c, prog); err != nil {
		return nil, nil, err
	}
	if !prune {
		return c, c.Nodes, nil
	}
	nodes, _ := ir.Prune(c)
	return c, nodes, nil
}

// renderError prints a diagnostic error the way build does and returns a
// short error for the exit status. Other errors pass through.
func renderError(w *os.File, err error, color bool) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return err
	}
	if rerr := diag.Render(w, []diag.Diagnostic{de.Diag}, diag.RenderOptions{Color: color}); rerr != nil {
		return rerr
	}
	return fmt.Errorf("compilation failed")
}
