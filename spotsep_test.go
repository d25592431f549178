package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"spotsep/paint"
	"spotsep/pipeline"
	septypes "spotsep/type"
)

func TestRunRejectsInvalidPaint(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.png")
	for name, p := range map[string]paint.Options{
		"negative thickness":   {ThicknessMicrons: -20, SurfaceArea: 100, Density: 1.2},
		"negative coefficient": {WeightCoefficient: -0.001, WidthMm: 10, HeightMm: 10},
		"cup without diameter": {ThicknessMicrons: 20, CupHeight: 10},
	} {
		o := options{imagePath: missing, outDir: t.TempDir(), paint: p}
		// fails on the paint flags before the missing input is opened
		if err := run(context.Background(), o, pipeline.DefaultConfig()); !errors.Is(err, septypes.ErrInvalidConfiguration) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestLoadTable(t *testing.T) {
	table, err := loadTable("", "")
	if err != nil || table.Len() == 0 {
		t.Fatalf("default table: %v", err)
	}
	sub, err := loadTable("", "White, Black C")
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 2 {
		t.Fatalf("subset has %d entries", sub.Len())
	}
	if _, err := loadTable("", "no such ink"); !errors.Is(err, septypes.ErrInvalidConfiguration) {
		t.Fatalf("unknown code: err = %v", err)
	}
	if _, err := loadTable(filepath.Join(t.TempDir(), "none.json"), ""); err == nil {
		t.Fatal("missing table file accepted")
	}
}

func TestPackSeparations(t *testing.T) {
	seps := []septypes.Separation{
		{Index: 0, Color: septypes.ExtractedColor{Hex: "#ff0000"}, Vector: &septypes.VectorSeparation{SVG: "<svg/>"}},
		{Index: 1, Color: septypes.ExtractedColor{Hex: "#ffffff"}, Err: septypes.ErrTraceFailure},
	}
	var buf bytes.Buffer
	if err := packSeparations(&buf, seps); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "01_ff0000.svg" || names[1] != "separations.json" {
		t.Fatalf("archive = %v", names)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	if b, _ := io.ReadAll(rc); string(b) != "<svg/>" {
		t.Fatalf("svg = %q", b)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := range 20 {
		for x := range 20 {
			c := color.NRGBA{255, 255, 255, 255}
			if x >= 5 && x < 15 && y >= 5 && y < 15 {
				c = color.NRGBA{0, 0, 200, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	in := filepath.Join(dir, "in.png")
	f, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out := filepath.Join(dir, "out")
	o := options{imagePath: in, outDir: out, masks: true,
		paint: paint.Options{ThicknessMicrons: 20, SurfaceArea: 100, Density: 1.2, WastePercent: 10}}
	cfg := pipeline.DefaultConfig()
	cfg.UpscaleFactor = 2
	if err := run(context.Background(), o, cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(out, "palette.json"))
	if err != nil {
		t.Fatal(err)
	}
	var palette septypes.Palette
	if err := json.Unmarshal(data, &palette); err != nil {
		t.Fatal(err)
	}
	if len(palette) != 2 || palette[0].Hex != "#ffffff" || palette[1].Hex != "#0000c8" {
		t.Fatalf("palette = %+v", palette)
	}
	for _, name := range []string{"paint.json", "separations.zip", "composite.png", "01_ffffff_mask.png", "02_0000c8_mask.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	cfg.MaxClusters = 0
	if err := run(context.Background(), o, cfg); err == nil {
		t.Fatal("invalid config accepted")
	}
}
