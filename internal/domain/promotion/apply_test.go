package promotion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopack/cartengine/internal/domain/money"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		subtotal money.Money
		want     string
		wantErr  error
	}{
		{
			name:     "percentage 18% of $100",
			discount: Discount{Code: "HAPPYHRS", Type: TypePercentage, Rate: d("18")},
			subtotal: money.MustParse("100", "USD"),
			want:     "18",
		},
		{
			name:     "percentage rounds to minor units",
			discount: Discount{Code: "TEN", Type: TypePercentage, Rate: d("10")},
			subtotal: money.MustParse("0.25", "USD"),
			want:     "0.02",
		},
		{
			name:     "percentage 100% equals subtotal",
			discount: Discount{Code: "FREE", Type: TypePercentage, Rate: d("100")},
			subtotal: money.MustParse("42.50", "USD"),
			want:     "42.5",
		},
		{
			name:     "percentage rate above 100 rejected",
			discount: Discount{Code: "BROKEN", Type: TypePercentage, Rate: d("120")},
			subtotal: money.MustParse("10", "USD"),
			wantErr:  ErrInvalidRate,
		},
		{
			name:     "percentage negative rate rejected",
			discount: Discount{Code: "NEG", Type: TypePercentage, Rate: d("-5")},
			subtotal: money.MustParse("10", "USD"),
			wantErr:  ErrInvalidRate,
		},
		{
			name:     "fixed $2 off $8",
			discount: Discount{Code: "FLAT2", Type: TypeFixed, Amount: money.MustParse("2", "USD")},
			subtotal: money.MustParse("8", "USD"),
			want:     "2",
		},
		{
			name:     "fixed clamped to subtotal",
			discount: Discount{Code: "BIG", Type: TypeFixed, Amount: money.MustParse("50", "USD")},
			subtotal: money.MustParse("19.99", "USD"),
			want:     "19.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.discount, tt.subtotal)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Amount.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
			assert.Equal(t, tt.subtotal.Currency, got.Currency)
		})
	}
}

func TestApplyFixedCurrencyMismatch(t *testing.T) {
	_, err := Apply(
		Discount{Code: "EUROONLY", Type: TypeFixed, Amount: money.MustParse("5", "EUR")},
		money.MustParse("20", "USD"),
	)

	var mismatch *money.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestApplyUnsupportedType(t *testing.T) {
	_, err := Apply(Discount{Code: "X", Type: Type("bogus")}, money.MustParse("10", "USD"))
	assert.Error(t, err)
}
