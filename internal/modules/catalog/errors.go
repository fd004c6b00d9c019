package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName = errors.New("product already exists")
	ErrNotFound      = errors.New("product not found")
	ErrEmpty         = errors.New("no products in catalog")
	ErrOutOfStock    = errors.New("product out of stock")
)

// MissingFieldError reports a required input field that was not supplied.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s data is missing", e.Field)
}
