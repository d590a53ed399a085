package user

import "errors"

var (
	ErrEmailTaken         = errors.New("Email já cadastrado")
	ErrInvalidCredentials = errors.New("Email ou senha inválidos")
	ErrNotFound           = errors.New("Usuário não encontrado")
	ErrInvalidRole        = errors.New("Papel de usuário inválido")
)
