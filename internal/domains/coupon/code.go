package coupon

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// CodeGenerator produces redemption codes from a restricted alphabet.
// The default alphabet drops I, O, 0 and 1 so codes survive being read
// aloud over a shop counter.
type CodeGenerator struct {
	alphabet string
	length   int
}

func NewCodeGenerator(alphabet string, length int) *CodeGenerator {
	return &CodeGenerator{alphabet: alphabet, length: length}
}

// Generate draws each character with crypto/rand. Uniqueness is not
// guaranteed here; callers rely on the database unique constraint and
// retry on collision.
func (g *CodeGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(g.alphabet[n.Int64()])
	}
	return b.String(), nil
}

// BuildQRPayload renders the scannable payload: <namespace>:<couponID>:<code>.
func BuildQRPayload(namespace string, couponID uuid.UUID, code string) string {
	return fmt.Sprintf("%s:%s:%s", namespace, couponID, code)
}

// ParseQRPayload reverses BuildQRPayload. The payload must have exactly
// three ':'-separated segments and carry the expected namespace.
func ParseQRPayload(namespace, payload string) (uuid.UUID, string, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 3 || parts[0] != namespace {
		return uuid.Nil, "", ErrInvalidQRCode
	}
	couponID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", ErrInvalidQRCode
	}
	if parts[2] == "" {
		return uuid.Nil, "", ErrInvalidQRCode
	}
	return couponID, parts[2], nil
}
