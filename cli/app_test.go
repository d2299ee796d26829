package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/pipeline"
	"go.viam.com/bodymeasure/rimage"
)

// setup writes a 4x3 config and one capture frame, and returns the config path, the capture
// directory and the app's output buffer.
func setup(t *testing.T) (string, string, *bytes.Buffer) {
	t.Helper()
	prev, prevGlobal := newLogger, logging.Global()
	newLogger = func(string) logging.Logger { return logging.NewTestLogger(t) }
	t.Cleanup(func() {
		newLogger = prev
		logging.ReplaceGlobal(prevGlobal)
	})

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bodymeasure.json")
	test.That(t, os.WriteFile(cfgPath, []byte(`{
		"width_px": 4,
		"height_px": 3,
		"mapper": "millimeter_grid",
		"min_reliable_depth_mm": 0
	}`), 0o600), test.ShouldBeNil)

	captureDir := filepath.Join(dir, "capture")
	test.That(t, os.Mkdir(captureDir, 0o700), test.ShouldBeNil)
	bg := rimage.Background
	bodyIndex, err := rimage.NewBodyIndexFrame(4, 3, []uint8{
		bg, bg, 0, 0,
		bg, 0, 0, 0,
		bg, bg, bg, 0,
	})
	test.That(t, err, test.ShouldBeNil)
	depth := rimage.NewEmptyDepthFrame(4, 3)
	for i := range depth.Data() {
		depth.Data()[i] = 1000
	}
	frame := &measure.Frame{Depth: depth, BodyIndex: bodyIndex}
	test.That(t, pipeline.WriteFrame(filepath.Join(captureDir, "frame-0000"), frame), test.ShouldBeNil)

	return cfgPath, captureDir, &bytes.Buffer{}
}

func TestMeasureAction(t *testing.T) {
	cfgPath, captureDir, out := setup(t)
	app := NewApp(out, out)
	test.That(t, app.Run([]string{"bodymeasure", "--config", cfgPath, "measure", captureDir}), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "0.002 m")
	test.That(t, out.String(), test.ShouldContainSubstring, "unavailable")
	test.That(t, out.String(), test.ShouldContainSubstring, "measured 1 frames, skipped 0")
}

func TestActionInstallsGlobalLogger(t *testing.T) {
	cfgPath, captureDir, out := setup(t)
	before := logging.Global()
	app := NewApp(out, out)
	test.That(t, app.Run([]string{"bodymeasure", "--config", cfgPath, "measure", captureDir}), test.ShouldBeNil)
	test.That(t, logging.Global(), test.ShouldNotEqual, before)
}

func TestMeasureActionWrongGeometry(t *testing.T) {
	_, captureDir, out := setup(t)
	app := NewApp(out, out)
	// the default geometry is 512x424, so the 4x3 frame is skipped
	test.That(t, app.Run([]string{"bodymeasure", "measure", captureDir}), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "measured 0 frames, skipped 1")
}

func TestPreviewAction(t *testing.T) {
	cfgPath, captureDir, out := setup(t)
	previewDir := t.TempDir()
	app := NewApp(out, out)
	err := app.Run([]string{
		"bodymeasure", "--config", cfgPath,
		"preview", "--out", previewDir, "--scale", "2", filepath.Join(captureDir, "frame-0000"),
	})
	test.That(t, err, test.ShouldBeNil)
	for _, suffix := range []string{"-depth.png", "-depth-color.png", "-bodies.png"} {
		f, err := os.Open(filepath.Join(previewDir, "frame-0000"+suffix))
		test.That(t, err, test.ShouldBeNil)
		cfg, err := png.DecodeConfig(f)
		test.That(t, f.Close(), test.ShouldBeNil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.Width, test.ShouldEqual, 8)
		test.That(t, cfg.Height, test.ShouldEqual, 6)
	}
	test.That(t, out.String(), test.ShouldContainSubstring, "frame 0: skeletal unavailable")
}

func TestPrintConfigAction(t *testing.T) {
	cfgPath, _, out := setup(t)
	app := NewApp(out, out)
	test.That(t, app.Run([]string{"bodymeasure", "--config", cfgPath, "config"}), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, `"mapper": "millimeter_grid"`)
	test.That(t, out.String(), test.ShouldContainSubstring, `"max_bodies": 6`)
}

func TestPrintConfigSchema(t *testing.T) {
	_, _, out := setup(t)
	app := NewApp(out, out)
	test.That(t, app.Run([]string{"bodymeasure", "config", "--schema"}), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "head_crown_correction_m")
}

func TestLogFile(t *testing.T) {
	_, captureDir, out := setup(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "bodymeasure.log")
	cfgPath := filepath.Join(dir, "cfg.json")
	test.That(t, os.WriteFile(cfgPath, []byte(`{
		"width_px": 4,
		"height_px": 3,
		"mapper": "millimeter_grid",
		"log_level": "debug",
		"log_file": "`+logPath+`"
	}`), 0o600), test.ShouldBeNil)

	app := NewApp(out, out)
	test.That(t, app.Run([]string{"bodymeasure", "--config", cfgPath, "measure", captureDir}), test.ShouldBeNil)
	//nolint:gosec
	data, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "frame measured")
}

func TestActionArguments(t *testing.T) {
	_, _, out := setup(t)
	app := NewApp(out, out)
	err := app.Run([]string{"bodymeasure", "measure"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "capture directory")

	err = app.Run([]string{"bodymeasure", "--config", filepath.Join(t.TempDir(), "nope.json"), "measure", "x"})
	test.That(t, err, test.ShouldNotBeNil)
}
