// Command vecexport writes a saved document to SVG, EPS, PGF or PNG.
//
//	vecexport -in doc.json -format svg -out drawing.svg
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/inamate/vecdraw/internal/asset"
	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/export"
)

func main() {
	in := flag.String("in", "", "document JSON file (default stdin)")
	out := flag.String("out", "", "output file (default stdout)")
	format := flag.String("format", export.FormatSVG, "svg, eps, pgf or png")
	scene := flag.String("scene", "", "scene ID (default first scene)")
	scale := flag.Float64("scale", 2, "PNG pixels per document unit")
	assets := flag.String("assets", "", "asset directory for PNG bitmaps")
	sample := flag.Bool("sample", false, "export the built-in sample document")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*in, *out, *format, *scene, *scale, *assets, *sample); err != nil {
		slog.Error("export", "error", err)
		os.Exit(1)
	}
}

func run(in, out, format, scene string, scale float64, assetDir string, sample bool) error {
	doc, err := readDocument(in, sample)
	if err != nil {
		return err
	}

	page, err := export.NewPage(doc, scene)
	if err != nil {
		return err
	}

	opts := export.Options{RasterScale: scale}
	if assetDir != "" {
		store, err := asset.NewStore(assetDir)
		if err != nil {
			return err
		}
		opts.Images = store
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, page, opts); err != nil {
		return err
	}
	slog.Debug("export complete", "format", format, "items", len(page.Items))
	return nil
}

func readDocument(in string, sample bool) (*document.InDocument, error) {
	if sample {
		return document.NewSampleDocument("proj_sample"), nil
	}

	var r io.Reader = os.Stdin
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		r = f
	}

	var doc document.InDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
