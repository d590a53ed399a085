package coupon

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func TestCodeGeneratorLengthAndAlphabet(t *testing.T) {
	t.Parallel()

	gen := NewCodeGenerator(testAlphabet, 8)
	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, ch := range code {
			require.Contains(t, testAlphabet, string(ch),
				"code %q contains %q outside the alphabet", code, string(ch))
		}
	}
}

func TestCodeGeneratorExcludesAmbiguousCharacters(t *testing.T) {
	t.Parallel()

	gen := NewCodeGenerator(testAlphabet, 8)
	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.NotContains(t, code, "I")
		require.NotContains(t, code, "O")
		require.NotContains(t, code, "0")
		require.NotContains(t, code, "1")
	}
}

func TestCodeGeneratorRespectsConfiguredLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{4, 6, 12} {
		gen := NewCodeGenerator(testAlphabet, length)
		code, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, code, length)
	}
}

func TestBuildQRPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	couponID := uuid.New()
	payload := BuildQRPayload("CLUBELOCAL", couponID, "ABCD2345")
	require.Equal(t, "CLUBELOCAL:"+couponID.String()+":ABCD2345", payload)

	gotID, gotCode, err := ParseQRPayload("CLUBELOCAL", payload)
	require.NoError(t, err)
	require.Equal(t, couponID, gotID)
	require.Equal(t, "ABCD2345", gotCode)
}

func TestParseQRPayloadRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	couponID := uuid.New()
	cases := []struct {
		name    string
		payload string
	}{
		{"wrong namespace", "OTHERCLUB:" + couponID.String() + ":ABCD2345"},
		{"two segments", "CLUBELOCAL:" + couponID.String()},
		{"four segments", "CLUBELOCAL:" + couponID.String() + ":ABCD2345:extra"},
		{"bad coupon id", "CLUBELOCAL:not-a-uuid:ABCD2345"},
		{"empty code", "CLUBELOCAL:" + couponID.String() + ":"},
		{"empty payload", ""},
		{"bare code", "ABCD2345"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ParseQRPayload("CLUBELOCAL", tc.payload)
			require.ErrorIs(t, err, ErrInvalidQRCode)
		})
	}
}

func TestParseQRPayloadKeepsCodeWithoutColons(t *testing.T) {
	t.Parallel()

	// The code segment itself never contains ':' since the alphabet is
	// alphanumeric; a payload with extra separators is rejected outright.
	payload := strings.Join([]string{"CLUBELOCAL", uuid.New().String(), "AB:CD"}, ":")
	_, _, err := ParseQRPayload("CLUBELOCAL", payload)
	require.ErrorIs(t, err, ErrInvalidQRCode)
}
