package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"spotsep/color2mask"
	"spotsep/color2spot"
	"spotsep/decode"
	"spotsep/paint"
	"spotsep/pipeline"
	"spotsep/svg2json"
	septypes "spotsep/type"
)

type options struct {
	imagePath string
	frame     int
	tablePath string
	spots     string // comma-separated codes to restrict matching to
	outDir    string
	masks     bool

	paint paint.Options
}

func loadTable(path, spots string) (*color2spot.Table, error) {
	table := color2spot.DefaultTable()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open spot table")
		}
		defer f.Close()
		if table, err = color2spot.LoadTable(f); err != nil {
			return nil, err
		}
	}
	if spots == "" {
		return table, nil
	}
	return table.Subset(strings.Split(spots, ","))
}

func run(ctx context.Context, o options, cfg pipeline.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	policy, err := o.paint.Policy()
	if err != nil {
		return err
	}
	table, err := loadTable(o.tablePath, o.spots)
	if err != nil {
		return err
	}

	slog.Info("decoding", "path", o.imagePath)
	img, err := decode.File(ctx, o.imagePath, o.frame)
	if err != nil {
		return err
	}

	palette, err := pipeline.Analyze(ctx, img, table, cfg)
	if err != nil {
		return err
	}
	if len(palette) == 0 {
		slog.Warn("no visible ink in image")
	}
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	if err := writeJSON(filepath.Join(o.outDir, "palette.json"), palette); err != nil {
		return err
	}

	if policy != nil {
		est, total, err := pipeline.Estimate(policy, palette)
		if err != nil {
			return err
		}
		for i, e := range est {
			slog.Info("paint", "hex", palette[i].Hex, "spot", palette[i].Spot.Code, "grams", fmt.Sprintf("%.3f", e.TotalWeight))
		}
		slog.Info("paint total", "grams", fmt.Sprintf("%.3f", total))
		if err := writeJSON(filepath.Join(o.outDir, "paint.json"), est); err != nil {
			return err
		}
	}

	seps, err := pipeline.Separate(ctx, img, palette, cfg)
	if err != nil {
		return err
	}
	if err := writeArchive(filepath.Join(o.outDir, "separations.zip"), seps); err != nil {
		return err
	}
	if o.masks {
		if err := writeMasks(o.outDir, seps, palette); err != nil {
			return err
		}
	}
	slog.Info("done", "colors", len(palette), "out", o.outDir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write "+path)
}

// separationName is NN_rrggbb.svg, numbered in palette order
func separationName(s septypes.Separation) string {
	return fmt.Sprintf("%02d_%s.svg", s.Index+1, strings.TrimPrefix(s.Color.Hex, "#"))
}

// writeArchive packs one SVG per traced separation plus their JSON index
func writeArchive(path string, seps []septypes.Separation) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create archive")
	}
	defer f.Close()
	if err := packSeparations(f, seps); err != nil {
		return err
	}
	return errors.Wrap(f.Close(), "close archive")
}

func packSeparations(w io.Writer, seps []septypes.Separation) error {
	zw := zip.NewWriter(w)
	for _, s := range seps {
		if s.Err != nil || s.Vector == nil {
			continue
		}
		fw, err := zw.Create(separationName(s))
		if err != nil {
			return errors.Wrap(err, "archive entry")
		}
		if _, err := io.WriteString(fw, s.Vector.SVG); err != nil {
			return errors.Wrap(err, "archive write")
		}
	}
	index, err := svg2json.Marshal(seps)
	if err != nil {
		return errors.Wrap(err, "encode separations")
	}
	fw, err := zw.Create("separations.json")
	if err != nil {
		return errors.Wrap(err, "archive entry")
	}
	if _, err := fw.Write(index); err != nil {
		return errors.Wrap(err, "archive write")
	}
	return errors.Wrap(zw.Close(), "finish archive")
}

// writeMasks writes each separation mask and a colored composite
func writeMasks(dir string, seps []septypes.Separation, palette septypes.Palette) error {
	masks := make([]*image.Gray, 0, len(seps))
	for _, s := range seps {
		name := strings.TrimSuffix(separationName(s), ".svg") + "_mask.png"
		if err := writePNG(filepath.Join(dir, name), s.Mask); err != nil {
			return err
		}
		masks = append(masks, s.Mask)
	}
	if len(masks) == 0 {
		return nil
	}
	return writePNG(filepath.Join(dir, "composite.png"), color2mask.Preview(masks, palette))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrap(f.Close(), "close png")
}
