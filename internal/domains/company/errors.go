package company

import "errors"

var (
	ErrNotFound      = errors.New("Empresa não encontrada")
	ErrInvalidStatus = errors.New("Status de empresa inválido")
)
