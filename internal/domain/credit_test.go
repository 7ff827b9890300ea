package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCredit_QR(t *testing.T) {
	// 10,000 money units at rate 65 -> exactly 65 robux.
	assert.Equal(t, int64(65), ComputeCredit(10_000, OrderTypeQR, "", 65))

	// One unit short truncates down.
	assert.Equal(t, int64(64), ComputeCredit(9_999, OrderTypeQR, "", 65))

	assert.Equal(t, int64(650), ComputeCredit(100_000, OrderTypeQR, "", 65))
}

func TestComputeCredit_CardDiscountTiers(t *testing.T) {
	// VIETTEL/MOBIFONE: 20% off. realValue=8000 -> floor(8000/10000*65)=52.
	assert.Equal(t, int64(52), ComputeCredit(10_000, OrderTypeCard, "VIETTEL", 65))
	assert.Equal(t, int64(52), ComputeCredit(10_000, OrderTypeCard, "MOBIFONE", 65))

	// VINAPHONE tier: 15% off. realValue=8500 -> floor(8500/10000*65)=55.
	assert.Equal(t, int64(55), ComputeCredit(10_000, OrderTypeCard, "VINAPHONE", 65))
	assert.Equal(t, int64(55), ComputeCredit(10_000, OrderTypeCard, "ZING", 65))
	assert.Equal(t, int64(55), ComputeCredit(10_000, OrderTypeCard, "GARENA", 65))
	assert.Equal(t, int64(55), ComputeCredit(10_000, OrderTypeCard, "GATE", 65))

	// Unknown brand converts at face value.
	assert.Equal(t, int64(65), ComputeCredit(10_000, OrderTypeCard, "UNKNOWN", 65))
}

func TestComputeCredit_CaseInsensitiveBrand(t *testing.T) {
	assert.Equal(t, int64(52), ComputeCredit(10_000, OrderTypeCard, "viettel", 65))
	assert.Equal(t, int64(52), ComputeCredit(10_000, OrderTypeCard, " Viettel ", 65))
}

func TestComputeCredit_TruncatesDiscountedValue(t *testing.T) {
	// 9999 * 85 / 100 = 8499.15 -> 8499, then floor(8499*65/10000) = 55.
	assert.Equal(t, int64(55), ComputeCredit(9_999, OrderTypeCard, "VINAPHONE", 65))
}

func TestComputeCredit_DefaultRate(t *testing.T) {
	// Unset rate falls back to 65.
	assert.Equal(t, int64(65), ComputeCredit(10_000, OrderTypeQR, "", 0))
	assert.Equal(t, int64(65), ComputeCredit(10_000, OrderTypeQR, "", -3))

	assert.Equal(t, int64(70), ComputeCredit(10_000, OrderTypeQR, "", 70))
}

func TestComputeCredit_NonPositiveAmount(t *testing.T) {
	assert.Equal(t, int64(0), ComputeCredit(0, OrderTypeQR, "", 65))
	assert.Equal(t, int64(0), ComputeCredit(-500, OrderTypeQR, "", 65))
}

func TestEffectiveRate(t *testing.T) {
	assert.Equal(t, int64(DefaultRate), EffectiveRate(0))
	assert.Equal(t, int64(80), EffectiveRate(80))
}
