package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrInvalidMovementType  = fmt.Errorf("%w: tipo de movimiento no permitido", ErrInvalidInput)
	ErrInsufficientStock    = errors.New("no hay stock disponible")
	ErrConcurrentSettlement = errors.New("ya fue liquidado por otro proceso")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrPersistence          = errors.New("error de persistencia")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)

// PersistenceError envuelve un error de almacenamiento con la operación que lo produjo.
// errors.Is(err, ErrPersistence) es verdadero para cualquier PersistenceError.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap expone tanto el sentinel como la causa original.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// IsBusiness indica si err es un rechazo de negocio tipado (no una falla de almacenamiento).
func IsBusiness(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrConcurrentSettlement),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden):
		return true
	}
	return false
}

// Persistence convierte err en PersistenceError salvo que ya sea un error de dominio o nil.
func Persistence(op string, err error) error {
	if err == nil || IsBusiness(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
