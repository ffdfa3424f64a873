package models

import (
	"errors"
	"fmt"
)

var (
	ErrRowIndexOutOfRange  = errors.New("row index out of range")
	ErrItemIndexOutOfRange = errors.New("item index out of range")
	ErrSpacerSlot          = errors.New("slot is a spacer")
	ErrInvalidFlag         = errors.New("invalid row flag")
	ErrInvalidMediaKind    = errors.New("media kind must be image or video")
	ErrInvalidStyle        = errors.New("invalid style settings")
	ErrInvariantViolation  = errors.New("grid invariant violated")
)

var (
	ErrNotEditor         = errors.New("not authenticated as editor")
	ErrEditorClosed      = errors.New("editor is not open")
	ErrUnsavedChanges    = errors.New("unsaved changes")
	ErrOperationInFlight = errors.New("operation already in progress")
	ErrProcessingTimeout = errors.New("asset processing timed out")
	ErrUnsupportedMedia  = errors.New("unsupported media type")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrJobNotFound       = errors.New("job not found")
	ErrMalformedDocument = errors.New("malformed grid document")
)

// ErrorKind classifies failures the way callers must react to them.
type ErrorKind int

const (
	KindConfig ErrorKind = iota + 1
	KindAuth
	KindNetwork
	KindUpload
	KindProcessing
	KindInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindUpload:
		return "upload"
	case KindProcessing:
		return "processing"
	case KindInvariant:
		return "invariant"
	}
	return "unknown"
}

// GridError carries an ErrorKind through wrapping.
type GridError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *GridError {
	return &GridError{Kind: kind, Op: op, Err: err}
}

func (e *GridError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *GridError) Unwrap() error {
	return e.Err
}

// Is matches another GridError of the same kind, so errors.Is(err,
// &GridError{Kind: KindNetwork}) works for any network failure.
func (e *GridError) Is(target error) bool {
	t, ok := target.(*GridError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op) && t.Err == nil
}

// KindOf returns the kind of the outermost GridError in the chain.
func KindOf(err error) (ErrorKind, bool) {
	var ge *GridError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, &GridError{Kind: kind})
}
