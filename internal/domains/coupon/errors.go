package coupon

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("Cupom não encontrado")
	ErrNotOwner     = errors.New("Você não tem permissão para editar este cupom")
	ErrDeleteDenied = errors.New("Você não tem permissão para deletar este cupom")

	ErrCompanyMissing   = errors.New("Empresa não encontrada para este usuário")
	ErrCurrentForbidden = errors.New("Autenticação necessária para usar companyId=current")
	ErrInvalidCompanyID = errors.New("ID de empresa inválido")
	ErrInvalidDates   = errors.New("Data de validade deve ser posterior à data de início")
	ErrInvalidStatus  = errors.New("Status inválido. Use APPROVED ou REJECTED")
	ErrToggleDenied   = errors.New("Apenas cupons aprovados podem ser pausados/ativados")

	// Activation.
	ErrNotAvailable      = errors.New("Cupom não está disponível para uso")
	ErrExpired           = errors.New("Cupom expirado")
	ErrNotYetValid       = errors.New("Cupom ainda não está válido")
	ErrTotalLimitReached = errors.New("Cupom atingiu o limite máximo de usos")
	ErrCodeGeneration    = errors.New("Erro ao gerar código único. Tente novamente.")

	// Validation.
	ErrCodeRequired     = errors.New("Código ou QR Code é obrigatório")
	ErrInvalidQRCode    = errors.New("QR Code inválido")
	ErrCodeNotFound     = errors.New("Código inválido ou não encontrado")
	ErrAlreadyUsed      = errors.New("Este cupom já foi utilizado")
	ErrWrongCompany     = errors.New("Este cupom não pertence à sua empresa")
	ErrUsageExpired     = errors.New("Este cupom expirou")
	ErrUsageNotYetValid = errors.New("Este cupom ainda não está válido")

	// ErrDuplicateCode is the repository's translation of the unique
	// constraint on coupon_usages.code; the service retries on it.
	ErrDuplicateCode = errors.New("código de cupom duplicado")

	// Favorites.
	ErrFavoriteExists   = errors.New("Cupom já está nos favoritos")
	ErrFavoriteNotFound = errors.New("Favorito não encontrado")
)

// UserLimitError reports the per-user cap in the message, mirroring what
// the customer sees in the app.
type UserLimitError struct {
	Max int
}

func (e *UserLimitError) Error() string {
	return fmt.Sprintf("Você já usou este cupom o máximo de vezes permitido (%d)", e.Max)
}
