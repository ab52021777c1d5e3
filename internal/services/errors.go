package services

import "errors"

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrValidation          = errors.New("datos inválidos")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrDuplicate           = errors.New("registro duplicado")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, intente de nuevo")
	ErrUnitUnavailable     = errors.New("la unidad no está disponible")
	ErrClientInUse         = errors.New("el cliente tiene expedientes asociados")
)
