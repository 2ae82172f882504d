package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	// ErrReferential una referencia apunta a un registro inexistente o de otra empresa.
	ErrReferential = errors.New("referencia inválida")
	// ErrUpstream el almacén de datos o el proveedor de identidad no respondió.
	ErrUpstream = errors.New("servicio externo no disponible")
)
