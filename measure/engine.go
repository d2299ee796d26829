package measure

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/rimage/transform"
	"go.viam.com/bodymeasure/skeleton"
)

// Options configures an Engine. Width and Height are the frame geometry every buffer must match.
type Options struct {
	Width               int
	Height              int
	MaxBodies           int
	HeadCrownCorrection float64
	InvalidDepth        InvalidDepthPolicy
}

// DefaultOptions returns options for the 512x424 depth sensor.
func DefaultOptions() Options {
	return Options{
		Width:               512,
		Height:              424,
		MaxBodies:           rimage.DefaultMaxBodies,
		HeadCrownCorrection: skeleton.DefaultHeadCrownCorrection,
		InvalidDepth:        PropagateInvalidDepth,
	}
}

// Frame is everything the sensor delivers for one capture instant.
type Frame struct {
	Sequence  uint64
	Depth     *rimage.DepthFrame
	BodyIndex *rimage.BodyIndexFrame
	Bodies    []skeleton.Body
}

// BodyHeight is the skeletal estimate for one tracked body slot.
type BodyHeight struct {
	Index  int
	Result Result
	// InferredJoints counts joints whose position the tracker guessed. They are used as-is.
	InferredJoints int
	Err            error
}

// Report is the outcome of measuring one frame.
type Report struct {
	Sequence       uint64
	OccupiedPixels int
	TrackedBodies  int

	// SkeletalHeight is the estimate of the tracked body with the lowest Index that had every
	// joint, whatever order Frame.Bodies is in.
	SkeletalHeight     Result
	Bodies             []BodyHeight
	SegmentationHeight Result
	SegmentationWidth  Result

	// Issues combines every non-fatal problem seen while measuring.
	Issues error

	// Mask is the engine's workspace mask. It is only valid until the next Measure call.
	Mask *rimage.SegmentationMask
}

// Engine runs the per-frame measurement pass. It owns its workspace and is not safe for
// concurrent use; callers must finish with one Report before measuring the next frame.
type Engine struct {
	opts         Options
	builder      *rimage.MaskBuilder
	heights      *skeleton.HeightEstimator
	segmentation *SegmentationEstimator
	ws           *Workspace
	logger       logging.Logger
}

// NewEngine returns an engine for frames of opts' geometry.
func NewEngine(opts Options, mapper transform.Mapper, logger logging.Logger) (*Engine, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Errorf("bad frame geometry %dx%d", opts.Width, opts.Height)
	}
	if mapper == nil {
		return nil, errors.New("a depth to world mapper is required")
	}
	if logger == nil {
		logger = logging.Global().Sublogger("measure")
	}
	builder, err := rimage.NewMaskBuilder(opts.MaxBodies)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:         opts,
		builder:      builder,
		heights:      skeleton.NewHeightEstimator(opts.HeadCrownCorrection),
		segmentation: NewSegmentationEstimator(mapper, opts.InvalidDepth),
		ws:           NewWorkspace(opts.Width, opts.Height, opts.MaxBodies),
		logger:       logger,
	}, nil
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Measure builds the segmentation mask and runs every estimator on frame. The only error it
// returns is a frame whose buffers do not fit the configured geometry; such a frame is skipped.
// Every other problem leaves the affected result unavailable or flagged and is listed in
// Report.Issues.
func (e *Engine) Measure(frame *Frame) (*Report, error) {
	if err := e.checkFrame(frame); err != nil {
		return nil, err
	}
	occupied, err := e.builder.Build(frame.BodyIndex, frame.Depth, e.ws.Mask)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Sequence:           frame.Sequence,
		OccupiedPixels:     occupied,
		SkeletalHeight:     Unavailable(MethodSkeletal),
		SegmentationHeight: Unavailable(MethodSegmentationHeight),
		SegmentationWidth:  Unavailable(MethodSegmentationWidth),
		Mask:               e.ws.Mask,
	}
	var issues []error

	headline := -1
	for _, body := range frame.Bodies {
		if !body.Tracked {
			continue
		}
		report.TrackedBodies++
		bh := e.measureBody(body)
		if bh.Err != nil {
			issues = append(issues, errors.Wrapf(bh.Err, "body %d", body.Index))
		} else if headline < 0 || body.Index < headline {
			headline = body.Index
			report.SkeletalHeight = bh.Result
		}
		report.Bodies = append(report.Bodies, bh)
	}

	if occupied == 0 {
		issues = append(issues, ErrEmptyMask)
	} else {
		report.SegmentationHeight, err = e.segmentation.Height(e.ws, frame.Depth)
		issues = appendResultIssues(issues, report.SegmentationHeight, err)
		report.SegmentationWidth, err = e.segmentation.Width(e.ws, frame.Depth)
		issues = appendResultIssues(issues, report.SegmentationWidth, err)
	}
	report.Issues = multierr.Combine(issues...)

	e.logger.Debugw("frame measured",
		"seq", report.Sequence,
		"occupied", occupied,
		"tracked", report.TrackedBodies,
		"skeletal", report.SkeletalHeight.String(),
		"height", report.SegmentationHeight.String(),
		"width", report.SegmentationWidth.String(),
	)
	return report, nil
}

func (e *Engine) measureBody(body skeleton.Body) BodyHeight {
	bh := BodyHeight{
		Index:          body.Index,
		Result:         Unavailable(MethodSkeletal),
		InferredJoints: body.CountByState(skeleton.Inferred),
	}
	h, err := e.heights.Height(body)
	if err != nil {
		bh.Err = err
		return bh
	}
	bh.Result = Result{Method: MethodSkeletal, Meters: h, Available: true}
	return bh
}

func (e *Engine) checkFrame(frame *Frame) error {
	if frame == nil || frame.Depth == nil || frame.BodyIndex == nil {
		return ErrIncompleteFrame
	}
	want := e.opts.Width * e.opts.Height
	if frame.Depth.Len() != want {
		return rimage.NewBufferSizeError("depth", frame.Depth.Len(), want)
	}
	if frame.BodyIndex.Len() != want {
		return rimage.NewBufferSizeError("body index", frame.BodyIndex.Len(), want)
	}
	if frame.Depth.Width() != e.opts.Width || frame.BodyIndex.Width() != e.opts.Width {
		return errors.Wrapf(rimage.ErrBufferSizeMismatch, "frame is %d wide, expected %d",
			frame.Depth.Width(), e.opts.Width)
	}
	return nil
}

func appendResultIssues(issues []error, r Result, err error) []error {
	if err != nil {
		return append(issues, errors.Wrap(err, r.Method.String()))
	}
	if r.InvalidDepth {
		issues = append(issues, errors.Wrapf(ErrInvalidDepth, "%s between %v and %v", r.Method, r.From, r.To))
	}
	return issues
}
