package updater

import (
	"errors"
	"fmt"
)

// Kind classifies updater failures. Every Kind is itself an error so callers
// can test with errors.Is(err, updater.ErrNetwork).
type Kind int

const (
	// ErrConfigMissing means a required host environment value is absent.
	ErrConfigMissing Kind = iota + 1
	// ErrVersionParse means a local or remote version string is not semver.
	ErrVersionParse
	// ErrNetwork means a request failed or returned a non-success status.
	ErrNetwork
	// ErrSerialization means persisted state or remote metadata is malformed.
	ErrSerialization
	// ErrIO means a file could not be created, read or written.
	ErrIO
	// ErrNoDownloadAsset means the release has no installable bundle.
	ErrNoDownloadAsset
	// ErrNoReleaseData means asset resolution was attempted before any
	// release metadata was fetched.
	ErrNoReleaseData
)

func (k Kind) String() string {
	switch k {
	case ErrConfigMissing:
		return "config missing"
	case ErrVersionParse:
		return "version parse"
	case ErrNetwork:
		return "network"
	case ErrSerialization:
		return "serialization"
	case ErrIO:
		return "io"
	case ErrNoDownloadAsset:
		return "no download asset"
	case ErrNoReleaseData:
		return "no release data"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) Error() string {
	return k.String()
}

// Error is the concrete failure returned by this package.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "load state"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind carried by err, or 0 if err did not come from
// this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
