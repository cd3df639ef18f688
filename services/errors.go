package services

import "errors"

// Sentinel errors returned by the service layer. Controllers translate
// them into HTTP status codes at the boundary; everything not matching one
// of these is an internal error.
var (
	ErrValidation = errors.New("dados inválidos")
	ErrNotFound   = errors.New("registro não encontrado")
	ErrPermission = errors.New("permissão negada")
	ErrConflict   = errors.New("registro duplicado")
)
