// Package config defines and reads the bodymeasure configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/rimage/transform"
	"go.viam.com/bodymeasure/skeleton"
)

// Mapper names.
const (
	MapperPinhole        = "pinhole"
	MapperMillimeterGrid = "millimeter_grid"
)

// Config describes the sensor geometry and how frames are measured. Fields left out of a
// config file keep the values from Default.
type Config struct {
	Width     int `json:"width_px"`
	Height    int `json:"height_px"`
	MaxBodies int `json:"max_bodies"`

	HeadCrownCorrection float64 `json:"head_crown_correction_m"`
	InvalidDepthPolicy  string  `json:"invalid_depth_policy"`

	// Depth readings outside this range are drawn black in previews.
	MinReliableDepth uint16 `json:"min_reliable_depth_mm"`
	MaxReliableDepth uint16 `json:"max_reliable_depth_mm"`

	Mapper     string                             `json:"mapper"`
	Intrinsics *transform.PinholeCameraIntrinsics `json:"intrinsics,omitempty"`
	// IntrinsicsFile is read when Intrinsics is not given inline.
	IntrinsicsFile string `json:"intrinsics_file,omitempty"`

	LogLevel string `json:"log_level"`
	// LogFile, when set, also receives JSON log lines and is rotated by size.
	LogFile string `json:"log_file,omitempty"`
}

// Default returns the configuration of the 512x424 depth sensor.
func Default() *Config {
	return &Config{
		Width:               512,
		Height:              424,
		MaxBodies:           rimage.DefaultMaxBodies,
		HeadCrownCorrection: skeleton.DefaultHeadCrownCorrection,
		InvalidDepthPolicy:  measure.PropagateInvalidDepth.String(),
		MinReliableDepth:    500,
		MaxReliableDepth:    4500,
		Mapper:              MapperPinhole,
		LogLevel:            "info",
	}
}

// Read reads a config file, substituting ${ENV} references first.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader decodes a config over the defaults and validates it. originalPath is only used in
// error messages.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %s", originalPath)
	}
	if err := cfg.Validate(originalPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (cfg *Config) Validate(path string) error {
	var errs []error
	if cfg.Width <= 0 {
		errs = append(errs, utils.NewConfigValidationFieldRequiredError(path, "width_px"))
	}
	if cfg.Height <= 0 {
		errs = append(errs, utils.NewConfigValidationFieldRequiredError(path, "height_px"))
	}
	if cfg.MaxBodies <= 0 || cfg.MaxBodies >= int(rimage.Background) {
		errs = append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("max_bodies must be in [1, %d), got %d", rimage.Background, cfg.MaxBodies)))
	}
	if cfg.HeadCrownCorrection < 0 {
		errs = append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("head_crown_correction_m must not be negative, got %v", cfg.HeadCrownCorrection)))
	}
	if _, err := measure.ParseInvalidDepthPolicy(cfg.InvalidDepthPolicy); err != nil {
		errs = append(errs, utils.NewConfigValidationError(path, err))
	}
	if cfg.MaxReliableDepth <= cfg.MinReliableDepth {
		errs = append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("max_reliable_depth_mm %d must be above min_reliable_depth_mm %d", cfg.MaxReliableDepth, cfg.MinReliableDepth)))
	}
	if _, err := cfg.BuildMapper(); err != nil {
		errs = append(errs, utils.NewConfigValidationError(path, err))
	}
	if _, err := logging.LevelFromString(cfg.LogLevel); err != nil {
		errs = append(errs, utils.NewConfigValidationError(path, err))
	}
	return multierr.Combine(errs...)
}

// BuildMapper returns the depth to world transform the config selects. Pinhole without explicit
// intrinsics falls back to the nominal sensor intrinsics, which only fit 512x424 frames.
func (cfg *Config) BuildMapper() (transform.Mapper, error) {
	switch cfg.Mapper {
	case MapperMillimeterGrid:
		return transform.MillimeterGrid, nil
	case "", MapperPinhole:
		intrinsics := cfg.Intrinsics
		switch {
		case intrinsics != nil:
			if err := intrinsics.CheckValid(); err != nil {
				return nil, err
			}
		case cfg.IntrinsicsFile != "":
			var err error
			if intrinsics, err = transform.NewPinholeCameraIntrinsicsFromJSONFile(cfg.IntrinsicsFile); err != nil {
				return nil, err
			}
		default:
			intrinsics = transform.KinectV2DepthIntrinsics()
		}
		if err := intrinsics.CheckValid(); err != nil {
			return nil, err
		}
		if intrinsics.Width != cfg.Width || intrinsics.Height != cfg.Height {
			return nil, errors.Errorf("intrinsics are for %dx%d frames but frames are %dx%d",
				intrinsics.Width, intrinsics.Height, cfg.Width, cfg.Height)
		}
		return intrinsics, nil
	}
	return nil, errors.Errorf("unknown mapper %q", cfg.Mapper)
}

// EngineOptions converts the config to measure.Options.
func (cfg *Config) EngineOptions() (measure.Options, error) {
	policy, err := measure.ParseInvalidDepthPolicy(cfg.InvalidDepthPolicy)
	if err != nil {
		return measure.Options{}, err
	}
	return measure.Options{
		Width:               cfg.Width,
		Height:              cfg.Height,
		MaxBodies:           cfg.MaxBodies,
		HeadCrownCorrection: cfg.HeadCrownCorrection,
		InvalidDepth:        policy,
	}, nil
}

// NewEngine builds a measure.Engine from the config.
func (cfg *Config) NewEngine(logger logging.Logger) (*measure.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	mapper, err := cfg.BuildMapper()
	if err != nil {
		return nil, err
	}
	return measure.NewEngine(opts, mapper, logger)
}

// Level returns the configured log level.
func (cfg *Config) Level() logging.Level {
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// Schema returns the JSON schema of the config file.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
