package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("dataset source not found")
	ErrMalformed     = errors.New("malformed dataset")
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyView     = errors.New("empty view")
)

type LoadKind int

const (
	KindNotFound LoadKind = iota + 1
	KindMalformed
)

func (k LoadKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

func (k LoadKind) sentinel() error {
	if k == KindNotFound {
		return ErrNotFound
	}
	return ErrMalformed
}

// LoadError reports why a source could not become a Dataset. It matches both
// its kind sentinel and the underlying cause with errors.Is.
type LoadError struct {
	Kind   LoadKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Kind)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func notFound(source string, err error) error {
	return &LoadError{Kind: KindNotFound, Source: source, Err: err}
}

func malformed(source string, err error) error {
	return &LoadError{Kind: KindMalformed, Source: source, Err: err}
}

func missingColumn(name string) error {
	return fmt.Errorf("%w %q", ErrMissingColumn, name)
}
