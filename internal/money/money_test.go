package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TxnEngine/internal/money"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		ticks int64
	}{
		{"0", 0},
		{"1", 10_000},
		{"5.0", 50_000},
		{"0.0001", 1},
		{"1.2345", 12_345},
		{"2.50", 25_000},
		{"10000.9999", 100_009_999},
	}

	for _, tc := range cases {
		a, err := money.Parse(tc.in)
		require.NoError(t, err, "parse %q", tc.in)
		assert.Equal(t, money.Amount(tc.ticks), a, "parse %q", tc.in)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "-1.0", "-0.0001", "0.00001", "3.14159"} {
		_, err := money.Parse(in)
		assert.Error(t, err, "parse %q should fail", in)
	}
}

func TestParse_SaturatesBeyondRange(t *testing.T) {
	// Larger than int64 ticks can hold: clamps instead of erroring.
	a, err := money.Parse("99999999999999999999999999.9999")
	require.NoError(t, err)
	assert.Equal(t, money.Max, a)
}

func TestAdd_Saturates(t *testing.T) {
	assert.Equal(t, money.Amount(30_000), money.Amount(10_000).Add(money.Amount(20_000)))
	assert.Equal(t, money.Max, money.Max.Add(money.MustParse("1.0")))
	assert.Equal(t, money.Max, money.Max.Add(money.Amount(1)))
	assert.Equal(t, money.Max, money.Max.Add(money.Zero))
}

func TestSub_ClampsAtZero(t *testing.T) {
	assert.Equal(t, money.Amount(10_000), money.Amount(30_000).Sub(money.Amount(20_000)))
	assert.Equal(t, money.Zero, money.Amount(20_000).Sub(money.Amount(20_000)))
	assert.Equal(t, money.Zero, money.Amount(10_000).Sub(money.Amount(20_000)))
	assert.Equal(t, money.Zero, money.Zero.Sub(money.Max))
}

func TestString_FixedFourPlaces(t *testing.T) {
	assert.Equal(t, "0.0000", money.Zero.String())
	assert.Equal(t, "5.0000", money.MustParse("5").String())
	assert.Equal(t, "1.2345", money.MustParse("1.2345").String())
	assert.Equal(t, "2.5000", money.MustParse("2.50").String())
}

func TestCmp(t *testing.T) {
	assert.Equal(t, -1, money.Amount(1).Cmp(money.Amount(2)))
	assert.Equal(t, 0, money.Amount(2).Cmp(money.Amount(2)))
	assert.Equal(t, 1, money.Amount(3).Cmp(money.Amount(2)))
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(money.MustParse("1.5"))
	require.NoError(t, err)
	assert.Equal(t, `"1.5000"`, string(data))

	var a money.Amount
	require.NoError(t, json.Unmarshal([]byte(`"2.25"`), &a))
	assert.Equal(t, money.MustParse("2.25"), a)

	require.NoError(t, json.Unmarshal([]byte(`3`), &a))
	assert.Equal(t, money.MustParse("3"), a)

	assert.Error(t, json.Unmarshal([]byte(`"-1"`), &a))
}
