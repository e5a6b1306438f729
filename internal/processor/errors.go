package processor

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the stage that produced it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindIO covers read, metadata and temp-file write failures.
	KindIO
	// KindTransform means the optimizer itself rejected the file.
	KindTransform
	// KindCommit covers the rename over the original and the permission restore.
	KindCommit
	// KindConfig aborts a run before any task starts.
	KindConfig
)

var (
	ErrIO        = errors.New("io error")
	ErrTransform = errors.New("transform error")
	ErrCommit    = errors.New("commit error")
	ErrConfig    = errors.New("config error")
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindTransform:
		return "transform"
	case KindCommit:
		return "commit"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindTransform:
		return ErrTransform
	case KindCommit:
		return ErrCommit
	case KindConfig:
		return ErrConfig
	default:
		return nil
	}
}

// Error carries the failing stage and path of a task or configuration step.
type Error struct {
	Kind Kind
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e's kind, so errors.Is(err, ErrCommit) works
// through any amount of wrapping.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ConfigError wraps err as a fatal configuration failure.
func ConfigError(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

func ioError(path, op string, err error) error {
	return &Error{Kind: KindIO, Path: path, Op: op, Err: err}
}

func transformError(path string, err error) error {
	return &Error{Kind: KindTransform, Path: path, Op: "optimize", Err: err}
}

func commitError(path, op string, err error) error {
	return &Error{Kind: KindCommit, Path: path, Op: op, Err: err}
}
