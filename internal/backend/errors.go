package backend

import (
	"errors"
	"fmt"
)

// NotFoundError reports a requested name that could not be resolved to a
// registered, usable backend. It is the only error resolution produces:
// a typo, an uninstalled optional simulator and a group with no available
// candidate all surface the same way.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unsupported backend %q", e.Name)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
