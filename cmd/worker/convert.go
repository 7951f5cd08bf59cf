package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arch-iv/archiv-api/internal/pdfraster"
)

// RunConvert renders every page of a PDF to WebP files in outDir.
func RunConvert(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: convert <pdfPath> [outDir]")
	}
	src := args[0]
	out := "out"
	if len(args) > 1 {
		out = args[1]
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if !pdfraster.IsPDF(data) {
		return fmt.Errorf("%s is not a PDF", src)
	}

	doc, err := pdfraster.Open(data)
	if err != nil {
		return err
	}
	defer doc.Close()

	pages, err := pdfraster.Convert(context.Background(), doc, filepath.Base(src), pdfraster.Options{}, func(current, total int) {
		fmt.Printf("page %d/%d\n", current, total)
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for _, p := range pages {
		path := filepath.Join(out, p.Name)
		if err := os.WriteFile(path, p.Data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote: %s (%dx%d)\n", path, p.Width, p.Height)
	}
	return nil
}
