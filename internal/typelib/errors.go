package typelib

import (
	"errors"
	"fmt"
)

var (
	ErrIntrospection    = errors.New("class cannot be introspected")
	ErrScopeMismatch    = errors.New("declaring scope is not an ancestor of the root")
	ErrUnresolvableType = errors.New("type cannot be resolved")
)

// IntrospectionError reports a class whose declaration cannot be obtained.
type IntrospectionError struct {
	Class  TypeID
	Reason string
	Err    error
}

func (e *IntrospectionError) Error() string {
	msg := fmt.Sprintf("introspect %s: %s", e.Class, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *IntrospectionError) Is(target error) bool { return target == ErrIntrospection }
func (e *IntrospectionError) Unwrap() error        { return e.Err }

// ScopeMismatchError reports a declaring scope that the root does not inherit from.
type ScopeMismatchError struct {
	Root  Descriptor
	Scope TypeID
}

func (e *ScopeMismatchError) Error() string {
	return fmt.Sprintf("%s is not an ancestor of %s", e.Scope, e.Root)
}

func (e *ScopeMismatchError) Is(target error) bool { return target == ErrScopeMismatch }

// UnresolvableTypeError reports an expression that has no closed binding.
type UnresolvableTypeError struct {
	Root   Descriptor
	Expr   string
	Scope  TypeID
	Reason string
}

func (e *UnresolvableTypeError) Error() string {
	if e.Root == nil {
		return fmt.Sprintf("resolve %s in %s: %s", e.Expr, e.Scope, e.Reason)
	}

	return fmt.Sprintf("resolve %s in %s via %s: %s", e.Expr, e.Scope, e.Root, e.Reason)
}

func (e *UnresolvableTypeError) Is(target error) bool { return target == ErrUnresolvableType }
