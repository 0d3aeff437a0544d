package orgmap

import (
	"errors"
	"fmt"
)

// Typed failures returned by Store operations. Every error returned by this
// package wraps exactly one of these sentinels, so callers can branch with
// errors.Is. In particular, legitimate absence (ErrNotFound) is distinct from
// the underlying table call failing (ErrUnavailable): bootstrap logic such as
// "create the admin account if missing" must not conflate the two.
var (
	// ErrNotFound indicates a point read or exact-match index query found
	// zero items.
	ErrNotFound = errors.New("orgmap: item not found")

	// ErrConflict indicates an index query expected to be unique returned
	// more than one item. This is an upstream invariant violation and is
	// surfaced rather than resolved by picking one match.
	ErrConflict = errors.New("orgmap: unique index conflict")

	// ErrUnavailable indicates the underlying table call itself failed.
	ErrUnavailable = errors.New("orgmap: table request failed")

	// ErrDecode indicates a stored item could not be interpreted as the
	// expected entity shape. This is a programmer error or foreign data,
	// not a recoverable business condition.
	ErrDecode = errors.New("orgmap: malformed item")
)

// unavailable wraps an AWS SDK error so it reports as ErrUnavailable while
// keeping the original chain inspectable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
