package value

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseBigDec_PreservesScale(t *testing.T) {
	b, err := ParseBigDec("1.50")
	require.NoError(t, err)
	require.Equal(t, BigDec("1.50"), b)
}

func TestParseBigDec_RejectsGarbage(t *testing.T) {
	_, err := ParseBigDec("not-a-number")
	require.Error(t, err)
}

func TestNewBigDec_RoundtripsThroughDecimal(t *testing.T) {
	d := decimal.NewFromFloat(3.25)
	b := NewBigDec(d)

	back, err := b.Decimal()
	require.NoError(t, err)
	require.True(t, d.Equal(back))
}

func TestBigDec_EqualUsesCanonicalString(t *testing.T) {
	a, err := ParseBigDec("2.00")
	require.NoError(t, err)
	b, err := ParseBigDec("2.00")
	require.NoError(t, err)
	require.True(t, Equal(a, b))
}
