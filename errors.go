package monitor

import (
	"errors"
	"fmt"
)

var (
	// ErrKindMismatch is matched by errors returned when a name already bound
	// to one Kind is resolved as another.
	ErrKindMismatch = errors.New("gomonitor: kind mismatch")

	// ErrNameSyntax is matched by errors returned for malformed monitor names.
	ErrNameSyntax = errors.New("gomonitor: invalid monitor name")

	// ErrDoubleClose is returned by Split.Close when the Split was already
	// stopped.
	ErrDoubleClose = errors.New("gomonitor: split stopped more than once")
)

// A KindMismatchError is returned when a monitor name is bound to Bound and
// was resolved as Requested.
type KindMismatchError struct {
	Name      string
	Bound     Kind
	Requested Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("gomonitor: monitor %q is a %s, requested as %s",
		e.Name, e.Bound, e.Requested)
}

func (e *KindMismatchError) Is(target error) bool { return target == ErrKindMismatch }

// A NameError is returned when a monitor name is malformed.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("gomonitor: invalid monitor name %q: %s", e.Name, e.Reason)
}

func (e *NameError) Is(target error) bool { return target == ErrNameSyntax }
