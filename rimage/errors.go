package rimage

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBufferSizeMismatch is the root of every error caused by a sensor buffer whose length does
// not agree with the frame geometry. A frame that fails this way is skipped whole.
var ErrBufferSizeMismatch = errors.New("buffer size does not match frame geometry")

// BufferSizeError reports which buffer had the wrong length.
type BufferSizeError struct {
	Buffer string
	Got    int
	Want   int
}

// NewBufferSizeError returns a *BufferSizeError for the named buffer.
func NewBufferSizeError(buffer string, got, want int) error {
	return &BufferSizeError{Buffer: buffer, Got: got, Want: want}
}

func (e *BufferSizeError) Error() string {
	return fmt.Sprintf("%s buffer has %d elements, expected %d", e.Buffer, e.Got, e.Want)
}

// Unwrap lets errors.Is match ErrBufferSizeMismatch.
func (e *BufferSizeError) Unwrap() error {
	return ErrBufferSizeMismatch
}

func checkGeometry(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("bad width or height for frame %v %v", width, height)
	}
	return nil
}
