package mie

import (
	"errors"
	"fmt"
)

var (
	ErrNumericalInstability = errors.New("numerical instability")
	ErrInvalidSizeParameter = errors.New("invalid size parameter")
)

// InstabilityError pinpoints the recursion stage and degree that blew up.
type InstabilityError struct {
	Stage  string
	Degree int
	X      float64
	Value  complex128
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%s: %s at degree %d (x = %g, value %v)", ErrNumericalInstability, e.Stage, e.Degree, e.X, e.Value)
}

func (e *InstabilityError) Unwrap() error {
	return ErrNumericalInstability
}

type sizeParameterError struct {
	x float64
}

func (e *sizeParameterError) Error() string {
	return fmt.Sprintf("%s: x = %v must be positive and finite", ErrInvalidSizeParameter, e.x)
}

func (e *sizeParameterError) Unwrap() error {
	return ErrInvalidSizeParameter
}
