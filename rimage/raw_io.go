package rimage

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Load refills the frame's own buffer from r, so one frame can hold every frame of a capture in
// turn. On error the contents are undefined.
func (df *DepthFrame) Load(r io.Reader) error {
	var buf [2]byte
	for i := range df.data {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return NewBufferSizeError("depth", i, len(df.data))
			}
			return errors.Wrap(err, "reading depth frame")
		}
		df.data[i] = binary.LittleEndian.Uint16(buf[:])
	}
	extra, err := io.Copy(io.Discard, r)
	if err != nil {
		return errors.Wrap(err, "reading depth frame")
	}
	if extra > 0 {
		return NewBufferSizeError("depth", len(df.data)+int(extra/2), len(df.data))
	}
	return nil
}

// WriteTo writes width*height little-endian uint16 depths, the format Load reads.
func (df *DepthFrame) WriteTo(out io.Writer) (int64, error) {
	buf := make([]byte, 2*len(df.data))
	for i, z := range df.data {
		binary.LittleEndian.PutUint16(buf[2*i:], z)
	}
	n, err := out.Write(buf)
	return int64(n), err
}

// Load refills the frame's own buffer with width*height owner id bytes from r. On error the
// contents are undefined.
func (bf *BodyIndexFrame) Load(r io.Reader) error {
	n, err := io.ReadFull(r, bf.data)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return NewBufferSizeError("body index", n, len(bf.data))
	}
	if err != nil {
		return errors.Wrap(err, "reading body index frame")
	}
	extra, err := io.Copy(io.Discard, r)
	if err != nil {
		return errors.Wrap(err, "reading body index frame")
	}
	if extra > 0 {
		return NewBufferSizeError("body index", len(bf.data)+int(extra), len(bf.data))
	}
	return nil
}

// WriteTo writes the raw owner ids.
func (bf *BodyIndexFrame) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(bf.data)
	return int64(n), err
}

// openMaybeGzip opens fn, transparently decompressing a .gz suffix.
func openMaybeGzip(fn string) (io.Reader, func() error, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, nil, err
	}
	if filepath.Ext(fn) != ".gz" {
		return bufio.NewReader(f), f.Close, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		utils.UncheckedError(f.Close())
		return nil, nil, err
	}
	return gz, func() error {
		utils.UncheckedError(gz.Close())
		return f.Close()
	}, nil
}

// LoadFile refills the frame from a raw depth file, gzip compressed if it ends in .gz.
func (df *DepthFrame) LoadFile(fn string) error {
	r, closer, err := openMaybeGzip(fn)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(closer)
	return errors.Wrapf(df.Load(r), "parsing %s", fn)
}

// LoadFile refills the frame from a raw body index file, gzip compressed if it ends in .gz.
func (bf *BodyIndexFrame) LoadFile(fn string) error {
	r, closer, err := openMaybeGzip(fn)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(closer)
	return errors.Wrapf(bf.Load(r), "parsing %s", fn)
}

// WriteImageToFile encodes img as PNG at path.
func WriteImageToFile(path string, img image.Image) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return png.Encode(f, img)
}
