package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/lmittmann/tint"

	"spotsep/pipeline"
)

func main() {
	var opts options

	flag.StringVar(&opts.imagePath, "image", "", "input image or video path")
	flag.IntVar(&opts.frame, "frame", 0, "frame index when the input is a video")
	flag.StringVar(&opts.tablePath, "table", "", "spot color table JSON (default: built-in coated table)")
	flag.StringVar(&opts.spots, "spot", "", "only match these comma-separated spot codes, e.g. \"485 C,Black C\"")
	flag.StringVar(&opts.outDir, "out", "output", "output directory")
	flag.BoolVar(&opts.masks, "masks", false, "also write mask PNGs")

	cfg := pipeline.DefaultConfig()
	flag.IntVar(&cfg.MaxClusters, "colors", cfg.MaxClusters, "maximum number of clusters")
	flag.BoolVar(&cfg.IgnoreBackground, "ignore-bg", false, "exclude near-white pixels from coverage")
	flag.BoolVar(&cfg.IgnoreBlack, "ignore-black", false, "exclude near-black pixels from coverage")
	flag.Float64Var(&cfg.NoiseFloorPercent, "noise", cfg.NoiseFloorPercent, "drop colors covering this percentage or less")
	flag.IntVar(&cfg.UpscaleFactor, "upscale", cfg.UpscaleFactor, "mask upscale factor before tracing")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "parallel tracing workers")
	flag.IntVar(&cfg.PreviewMaxDimension, "preview", 0, "downsize to this many pixels before clustering (0 = off)")
	flag.Float64Var(&cfg.PathOmit, "omit", cfg.PathOmit, "drop traced specks and paths up to this size in mask pixels")
	flag.Float64Var(&cfg.AlphaMax, "alphamax", cfg.AlphaMax, "corner threshold, 0 keeps every corner")
	flag.Float64Var(&cfg.OptTolerance, "opttolerance", cfg.OptTolerance, "curve optimization tolerance, 0 disables it")

	flag.Float64Var(&opts.paint.ThicknessMicrons, "thickness", 0, "ink film thickness in microns")
	flag.Float64Var(&opts.paint.Density, "density", 1.2, "ink density in g/cm3")
	flag.Float64Var(&opts.paint.WastePercent, "waste", 10, "waste percentage")
	flag.Float64Var(&opts.paint.SurfaceArea, "area", 0, "printed surface area in cm2")
	flag.Float64Var(&opts.paint.CupHeight, "cup-height", 0, "cup height in cm (replaces -area)")
	flag.Float64Var(&opts.paint.CupTopDiameter, "cup-top", 0, "cup top diameter in cm")
	flag.Float64Var(&opts.paint.CupBottomDiameter, "cup-bottom", 0, "cup bottom diameter in cm (conical when set)")
	flag.Float64Var(&opts.paint.WidthMm, "width-mm", 0, "print width in mm")
	flag.Float64Var(&opts.paint.HeightMm, "height-mm", 0, "print height in mm")
	flag.Float64Var(&opts.paint.WeightCoefficient, "coef", 0, "weight coefficient in g/mm2 (selects the coefficient policy)")

	verbose := flag.Bool("v", false, "debug logging")
	help := flag.Bool("help", false, "show help")
	flag.Parse()
	if *help || opts.imagePath == "" {
		flag.Usage()
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	pipeline.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, cfg); err != nil {
		logger.Error("spotsep failed", "err", err)
		stop()
		os.Exit(1)
	}
}
