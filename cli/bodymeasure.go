package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.viam.com/bodymeasure/config"
	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/pipeline"
	"go.viam.com/bodymeasure/rimage"
)

// newLogger builds the logger actions log through.
var newLogger = logging.NewLogger

// loadConfig reads the --config file, or the defaults when none is given, and a logger at the
// configured level. Call done once the action finishes.
func loadConfig(c *cli.Context) (cfg *config.Config, logger logging.Logger, done func(), err error) {
	cfg = config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		if cfg, err = config.Read(path); err != nil {
			return nil, nil, nil, err
		}
	}
	logger = newLogger("bodymeasure")
	logger.SetLevel(cfg.Level())
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	done = func() {}
	if cfg.LogFile != "" {
		var closer io.Closer
		logger, closer = logging.WithFile(logger, cfg.LogFile)
		done = func() {
			utils.UncheckedError(logger.Sync())
			utils.UncheckedError(closer.Close())
		}
	}
	logging.ReplaceGlobal(logger)
	return cfg, logger, done, nil
}

func firstArg(c *cli.Context, what string) (string, error) {
	if c.Args().Len() != 1 {
		return "", errors.Errorf("expected exactly one argument, the %s; use --help for more information", what)
	}
	return c.Args().First(), nil
}

// MeasureAction replays a capture directory and prints one table row per frame.
func MeasureAction(c *cli.Context) error {
	dir, err := firstArg(c, "capture directory")
	if err != nil {
		return err
	}
	cfg, logger, done, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer done()
	engine, err := cfg.NewEngine(logger.Sublogger("measure"))
	if err != nil {
		return err
	}
	source, err := pipeline.NewCaptureSource(dir, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	table := pipeline.NewTableSink(c.App.Writer)
	runner := pipeline.NewRunner(source, engine, table, logger)
	if err := runner.Run(c.Context); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	stats := runner.Stats()
	fmt.Fprintf(c.App.Writer, "measured %d frames, skipped %d\n", stats.Measured, stats.Skipped)
	return nil
}

// WatchAction measures frames written into a directory until interrupted.
func WatchAction(c *cli.Context) error {
	dir, err := firstArg(c, "directory to watch")
	if err != nil {
		return err
	}
	cfg, logger, done, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer done()
	engine, err := cfg.NewEngine(logger.Sublogger("measure"))
	if err != nil {
		return err
	}
	source, err := pipeline.NewWatchSource(c.Context, dir, cfg.Width, cfg.Height, logger.Sublogger("watch"))
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warnw("closing watcher", "error", err)
		}
	}()
	sink := pipeline.MultiSink{
		pipeline.LogSink{Logger: logger.Sublogger("report")},
		pipeline.FuncSink(func(ctx context.Context, report *measure.Report) error {
			_, err := fmt.Fprintln(c.App.Writer, summary(report))
			return err
		}),
	}
	fmt.Fprintf(c.App.Writer, "watching %s\n", dir)
	runner := pipeline.NewRunner(source, engine, sink, logger)
	err = runner.Run(c.Context)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	stats := runner.Stats()
	fmt.Fprintf(c.App.Writer, "measured %d frames, skipped %d, dropped %d\n", stats.Measured, stats.Skipped, source.Dropped())
	return err
}

// PreviewAction measures one captured frame and writes its depth and body index images.
func PreviewAction(c *cli.Context) error {
	stem, err := firstArg(c, "frame stem")
	if err != nil {
		return err
	}
	cfg, logger, done, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer done()
	engine, err := cfg.NewEngine(logger.Sublogger("measure"))
	if err != nil {
		return err
	}
	frame, err := pipeline.ReadFrame(stem, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	report, err := engine.Measure(frame)
	if err != nil {
		return err
	}

	base := filepath.Join(c.String(previewFlagOut), filepath.Base(stem))
	images := []struct {
		suffix string
		img    image.Image
	}{
		{"-depth.png", frame.Depth.ToGrayPreview(cfg.MinReliableDepth, nil)},
		{"-depth-color.png", frame.Depth.ToPrettyPicture(cfg.MinReliableDepth, cfg.MaxReliableDepth)},
		{"-bodies.png", report.Mask.ToBodyIndexImage(nil)},
	}
	for _, preview := range images {
		img, err := rimage.Upscale(preview.img, c.Int(previewFlagScale))
		if err != nil {
			return err
		}
		path := base + preview.suffix
		if err := rimage.WriteImageToFile(path, img); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	}
	fmt.Fprintln(c.App.Writer, summary(report))
	return nil
}

// PrintConfigAction prints the configuration after defaults and environment substitution.
func PrintConfigAction(c *cli.Context) error {
	if c.Bool(configFlagSchema) {
		return printJSON(c, config.Schema())
	}
	cfg, _, done, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer done()
	return printJSON(c, cfg)
}

func printJSON(c *cli.Context, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func summary(report *measure.Report) string {
	return fmt.Sprintf("frame %d: skeletal %s, height %s, width %s",
		report.Sequence, report.SkeletalHeight, report.SegmentationHeight, report.SegmentationWidth)
}
