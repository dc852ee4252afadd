package engine

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when neither selections nor files yield a part.
var ErrNoInput = errors.New("no parts to process: select a region or upload a file")

// ErrNoNesting is returned when an estimation is requested without layouts.
var ErrNoNesting = errors.New("nesting result has no layouts")

// ErrMaterialNotFound matches any MaterialNotFoundError via errors.Is.
var ErrMaterialNotFound = errors.New("material not found")

// PartTooLargeError reports a part that fits the sheet in neither orientation.
type PartTooLargeError struct {
	PartName    string
	Width       float64 // scaled mm
	Height      float64 // scaled mm
	SheetWidth  float64
	SheetHeight float64
}

func (e *PartTooLargeError) Error() string {
	return fmt.Sprintf("part %q (%.1fx%.1f mm) does not fit on a %.0fx%.0f mm sheet",
		e.PartName, e.Width, e.Height, e.SheetWidth, e.SheetHeight)
}

// CapacityExceededError reports a sheet that would hold more than
// MaxPartsPerSheet copies of a part. The options are rejected rather than
// nested.
type CapacityExceededError struct {
	PartName    string
	Width       float64 // scaled mm
	Height      float64 // scaled mm
	SheetWidth  float64
	SheetHeight float64
	Limit       int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("invalid options: a %gx%g mm sheet holds more than %d copies of part %q (%gx%g mm)",
		e.SheetWidth, e.SheetHeight, e.Limit, e.PartName, e.Width, e.Height)
}

// InvalidPartError reports a part whose scaled dimensions are not positive.
type InvalidPartError struct {
	PartName string
	Width    float64
	Height   float64
}

func (e *InvalidPartError) Error() string {
	return fmt.Sprintf("part %q has invalid scaled dimensions %gx%g", e.PartName, e.Width, e.Height)
}

// MaterialNotFoundError reports a material id missing from the catalog.
type MaterialNotFoundError struct {
	ID string
}

func (e *MaterialNotFoundError) Error() string {
	return fmt.Sprintf("material %q not found in catalog", e.ID)
}

func (e *MaterialNotFoundError) Is(target error) bool {
	return target == ErrMaterialNotFound
}
