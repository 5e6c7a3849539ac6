package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestAdd(t *testing.T) {
	got, err := MustParse("10.25", "USD").Add(MustParse("0.75", "USD"))
	require.NoError(t, err)
	assert.True(t, got.Equal(MustParse("11", "USD")))
}

func TestAddCurrencyMismatch(t *testing.T) {
	_, err := MustParse("10", "USD").Add(MustParse("10", "EUR"))
	require.Error(t, err)

	var mismatch *CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "add", mismatch.Op)
	assert.Equal(t, "USD", mismatch.Left)
	assert.Equal(t, "EUR", mismatch.Right)
}

func TestSub(t *testing.T) {
	got, err := MustParse("10", "USD").Sub(MustParse("2.50", "USD"))
	require.NoError(t, err)
	assert.True(t, got.Equal(MustParse("7.50", "USD")))
}

func TestSubNegativeResult(t *testing.T) {
	_, err := MustParse("2", "USD").Sub(MustParse("5", "USD"))

	var negative *NegativeResultError
	require.ErrorAs(t, err, &negative)
	assert.Equal(t, "subtract", negative.Op)
}

func TestSubFloor(t *testing.T) {
	tests := []struct {
		name        string
		a, b        Money
		want        Money
		wantClamped bool
	}{
		{
			name: "positive result untouched",
			a:    MustParse("10", "USD"),
			b:    MustParse("4", "USD"),
			want: MustParse("6", "USD"),
		},
		{
			name:        "negative result clamps to zero",
			a:           MustParse("4", "USD"),
			b:           MustParse("10", "USD"),
			want:        Zero("USD"),
			wantClamped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped, err := tt.a.SubFloor(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClamped, clamped)
			assert.True(t, got.Equal(tt.want))
		})
	}
}

func TestMul(t *testing.T) {
	got := MustParse("0.80", "USD").Mul(10)
	assert.True(t, got.Equal(MustParse("8", "USD")))
}

func TestPercentOf(t *testing.T) {
	got := MustParse("200", "USD").PercentOf(d("18"))
	assert.True(t, got.Equal(MustParse("36", "USD")))
}

func TestRoundHalfToEven(t *testing.T) {
	tests := []struct {
		name string
		in   Money
		want string
	}{
		{name: "half rounds to even down", in: MustParse("2.125", "USD"), want: "2.12"},
		{name: "half rounds to even up", in: MustParse("2.135", "USD"), want: "2.14"},
		{name: "above half rounds up", in: MustParse("2.1251", "USD"), want: "2.13"},
		{name: "zero-decimal currency", in: MustParse("1200.5", "JPY"), want: "1200"},
		{name: "three-decimal currency", in: MustParse("1.23456", "KWD"), want: "1.235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Round().Amount.String())
		})
	}
}

func TestRoundOnceNotPerStep(t *testing.T) {
	// Summing one third three times keeps full precision until the final
	// Round; rounding each intermediate step would compound to 0.99.
	third := New(decimal.NewFromInt(1).Div(decimal.NewFromInt(3)), "USD")

	sum := Zero("USD")
	for range 3 {
		var err error
		sum, err = sum.Add(third)
		require.NoError(t, err)
	}

	assert.Equal(t, "1.00", sum.Round().Amount.StringFixed(2))
}

func TestMin(t *testing.T) {
	got, err := Min(MustParse("5", "USD"), MustParse("3", "USD"))
	require.NoError(t, err)
	assert.True(t, got.Equal(MustParse("3", "USD")))

	_, err = Min(MustParse("5", "USD"), MustParse("3", "EUR"))
	assert.Error(t, err)
}
