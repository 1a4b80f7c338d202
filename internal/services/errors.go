package services

import (
	"errors"
	"strings"
)

// Sentinel errors the handlers map onto the HTTP taxonomy. Anything else
// coming out of a service is an internal failure.
var (
	ErrNotFound           = errors.New("no encontrado")
	ErrEmailTaken         = errors.New("el correo ya está registrado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrEmptyUpdate        = errors.New("no hay campos para actualizar")
	ErrMissingFields      = errors.New("faltan campos")
)

// ValidationError carries every problem found in one request so the caller
// can present them all at once. Validation never fails fast.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}
