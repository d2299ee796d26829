package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/rimage/transform"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate("default"), test.ShouldBeNil)

	mapper, err := cfg.BuildMapper()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mapper, test.ShouldResemble, transform.KinectV2DepthIntrinsics())

	opts, err := cfg.EngineOptions()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts, test.ShouldResemble, measure.DefaultOptions())
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)
}

func TestFromReaderKeepsDefaults(t *testing.T) {
	cfg, err := FromReader("partial.json", strings.NewReader(`{
		"invalid_depth_policy": "nearest_valid",
		"log_level": "debug"
	}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Width, test.ShouldEqual, 512)
	test.That(t, cfg.HeadCrownCorrection, test.ShouldEqual, 0.01)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)

	opts, err := cfg.EngineOptions()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.InvalidDepth, test.ShouldEqual, measure.NearestValidDepth)
}

func TestFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := FromReader("typo.json", strings.NewReader(`{"widht_px": 640}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "typo.json")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := FromReader("bad.json", strings.NewReader(`{
		"width_px": 0,
		"max_bodies": 300,
		"invalid_depth_policy": "guess",
		"mapper": "fisheye",
		"log_level": "loud"
	}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 5)
	test.That(t, err.Error(), test.ShouldContainSubstring, "width_px")
	test.That(t, err.Error(), test.ShouldContainSubstring, "fisheye")
}

func TestPinholeGeometryMustMatch(t *testing.T) {
	cfg := Default()
	cfg.Width = 640
	cfg.Height = 480
	test.That(t, cfg.Validate("cfg"), test.ShouldNotBeNil)

	cfg.Intrinsics = &transform.PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 600, Fy: 600, Ppx: 320, Ppy: 240}
	test.That(t, cfg.Validate("cfg"), test.ShouldBeNil)

	cfg.Mapper = MapperMillimeterGrid
	cfg.Intrinsics = nil
	mapper, err := cfg.BuildMapper()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mapper.PixelToWorld(1000, 0, 1000), test.ShouldResemble, r3.Vector{X: 1, Z: 1})
}

func TestReadSubstitutesEnvironment(t *testing.T) {
	t.Setenv("BODYMEASURE_POLICY", "nearest_valid")
	path := filepath.Join(t.TempDir(), "cfg.json")
	test.That(t, os.WriteFile(path, []byte(`{"invalid_depth_policy": "${BODYMEASURE_POLICY}", "mapper": "millimeter_grid"}`), 0o600),
		test.ShouldBeNil)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.InvalidDepthPolicy, test.ShouldEqual, "nearest_valid")

	engine, err := cfg.NewEngine(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.Options().InvalidDepth, test.ShouldEqual, measure.NearestValidDepth)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIntrinsicsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intrinsics.json")
	test.That(t, os.WriteFile(path, []byte(`{"width_px": 4, "height_px": 3, "fx": 2, "fy": 2, "ppx": 2, "ppy": 1.5}`), 0o600),
		test.ShouldBeNil)

	cfg := Default()
	cfg.Width = 4
	cfg.Height = 3
	cfg.IntrinsicsFile = path
	mapper, err := cfg.BuildMapper()
	test.That(t, err, test.ShouldBeNil)
	intrinsics, ok := mapper.(*transform.PinholeCameraIntrinsics)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, intrinsics.Fx, test.ShouldEqual, 2.0)

	cfg.IntrinsicsFile = filepath.Join(dir, "missing.json")
	test.That(t, cfg.Validate("cfg"), test.ShouldNotBeNil)
}

func TestSchema(t *testing.T) {
	out, err := json.Marshal(Schema())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, "invalid_depth_policy")
	test.That(t, string(out), test.ShouldContainSubstring, "intrinsics_file")
}
