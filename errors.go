package tinypng

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnexpectedEOF = errors.New("tinypng: unexpected end of data")
	ErrBlockType     = errors.New("tinypng: reserved block type")
	ErrBlockHeader   = errors.New("tinypng: invalid dynamic block header")
	ErrEmptyCode     = errors.New("tinypng: code table has no entries")
	ErrCodeLengths   = errors.New("tinypng: invalid code lengths")
	ErrInvalidCode   = errors.New("tinypng: bit sequence matches no code")
	ErrInvalidSymbol = errors.New("tinypng: symbol out of range")
	ErrDistance      = errors.New("tinypng: back-reference before start of output")
	ErrStoredLength  = errors.New("tinypng: stored block length mismatch")
	ErrZlibHeader    = errors.New("tinypng: invalid zlib header")
	ErrChecksum      = errors.New("tinypng: checksum mismatch")
	ErrFilterType    = errors.New("tinypng: unsupported filter type")
	ErrColorType     = errors.New("tinypng: unsupported colour type")
	ErrBitDepth      = errors.New("tinypng: invalid bit depth")
	ErrSignature     = errors.New("tinypng: not a PNG file")
	ErrChunk         = errors.New("tinypng: malformed chunk")
	ErrUnsupported   = errors.New("tinypng: unsupported feature")
)

// Stage names the part of the pipeline that rejected the input.
type Stage string

const (
	StageInflate  Stage = "inflate"
	StageZlib     Stage = "zlib"
	StageUnfilter Stage = "unfilter"
	StagePNG      Stage = "png"
)

// Error is returned by every decoding entry point. Err wraps one of the
// sentinel errors above, so errors.Is(err, ErrDistance) and friends work.
type Error struct {
	Stage  Stage
	Offset int // byte offset into the stage's input
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Stage, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, offset int, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Stage: stage, Offset: offset, Err: err}
}
