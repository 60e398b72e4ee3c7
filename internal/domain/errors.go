package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El mapeo a códigos HTTP vive en internal/interfaces/http.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrItemNotFound       = errors.New("ítem no encontrado")
	ErrLocationNotFound   = errors.New("ubicación no encontrada")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Errores estructurales del motor de inventario.
	ErrZeroQuantity        = errors.New("la cantidad no puede ser cero")
	ErrMissingLocation     = errors.New("ubicación requerida para el tipo de movimiento")
	ErrInvalidLocationPair = errors.New("par de ubicaciones inválido para traslado")
	ErrInsufficientStock   = errors.New("stock insuficiente")

	// ErrBalanceInconsistent indica que el balance materializado no coincide con el ledger.
	// Es un error interno (bug del proyector), nunca un error del caller.
	ErrBalanceInconsistent = errors.New("balance inconsistente con el ledger")
)
