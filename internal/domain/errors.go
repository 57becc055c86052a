package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso adjuntan detalle con fmt.Errorf("%w: ...") y los llamadores usan errors.Is.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// ErrInvariantViolation: la operación dejaría 0 <= incompletePairs <= stock roto. Nunca se corrige en silencio.
	ErrInvariantViolation = errors.New("violación de invariante de pares")
	// ErrTerminalState: el préstamo ya fue devuelto o marcado como actualizado.
	ErrTerminalState = errors.New("el registro ya está en un estado terminal")
	// ErrTransient: almacén no disponible; reintentable.
	ErrTransient = errors.New("almacén no disponible temporalmente")
)
