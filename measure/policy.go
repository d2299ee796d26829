package measure

import (
	"strings"

	"github.com/pkg/errors"
)

// InvalidDepthPolicy decides what a segmentation estimator does when an extreme pixel has no
// depth reading.
type InvalidDepthPolicy int

const (
	// PropagateInvalidDepth measures from the zero-depth pixel as-is and flags the result.
	PropagateInvalidDepth InvalidDepthPolicy = iota
	// NearestValidDepth walks inward over occupied pixels to the first one with a reading. If
	// there is none the extreme is used and flagged as with PropagateInvalidDepth.
	NearestValidDepth
)

func (p InvalidDepthPolicy) String() string {
	switch p {
	case PropagateInvalidDepth:
		return "propagate"
	case NearestValidDepth:
		return "nearest_valid"
	}
	return "unknown"
}

// ParseInvalidDepthPolicy parses "propagate" or "nearest_valid". Empty means propagate.
func ParseInvalidDepthPolicy(s string) (InvalidDepthPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "propagate":
		return PropagateInvalidDepth, nil
	case "nearest_valid":
		return NearestValidDepth, nil
	}
	return PropagateInvalidDepth, errors.Errorf("unknown invalid depth policy %q", s)
}
