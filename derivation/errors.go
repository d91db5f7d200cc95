package derivation

import (
	"errors"
	"fmt"
)

var (
	ErrComponentCount       = errors.New("wrong number of path components")
	ErrMissingRoot          = errors.New("path must start with 'm'")
	ErrMalformedComponent   = errors.New("malformed path component")
	ErrNonHardenedComponent = errors.New("component must be hardened")
	ErrPurpose              = errors.New("unexpected purpose")
	ErrCoinType             = errors.New("unexpected coin type")
	ErrNetworkIDOverflow    = errors.New("network id does not fit in one byte")
	ErrUnknownEntityKind    = errors.New("unknown entity kind")
	ErrEntityKindMismatch   = errors.New("entity kind mismatch")
	ErrUnknownKeyKind       = errors.New("unknown key kind")
	ErrIndexOutOfRange      = errors.New("index out of hardened range")
	ErrLegacyStructure      = errors.New("not a bip44-like olympia path")
)

// PathError reports a structural problem with a derivation path. Err is one
// of the sentinel errors above.
type PathError struct {
	Path string
	Err  error
	// Detail is optional context such as the offending component.
	Detail string
}

func (e *PathError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("derivation path %q: %v: %s", e.Path, e.Err, e.Detail)
	}
	return fmt.Sprintf("derivation path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(path string, err error, format string, args ...any) *PathError {
	return &PathError{Path: path, Err: err, Detail: fmt.Sprintf(format, args...)}
}
