package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"999":         "999.00",
		"1000":        "1,000.00",
		"126000":      "126,000.00",
		"8833.3333":   "8,833.33",
		"1234567.895": "1,234,567.90",
		"-2500.5":     "-2,500.50",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(MustParse(in)), in)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse(" 12,500.75 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12500.75")))

	d, err = Parse("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestPercentAndRound(t *testing.T) {
	interest := Percent(MustParse("120000"), MustParse("5"))
	assert.True(t, interest.Equal(MustParse("6000")))

	monthly := Round(MustParse("106000").Div(decimal.NewFromInt(12)))
	assert.Equal(t, "8833.33", monthly.String())
}

func TestSumAndMin(t *testing.T) {
	assert.True(t, Sum(MustParse("1.10"), MustParse("2.20"), MustParse("3.30")).Equal(MustParse("6.6")))
	assert.True(t, Sum().IsZero())
	assert.True(t, Min(MustParse("5"), MustParse("3")).Equal(MustParse("3")))
}
