package value

import (
	"testing"

	"github.com/go-sass/sass/sasserror"
	"github.com/stretchr/testify/require"
)

func TestAddNumbersWithUnits(t *testing.T) {
	a := NumUnit(1, "in")
	b := NumUnit(10, "px")
	sum, err := Add(a, b, sasserror.Span{})
	require.NoError(t, err)
	require.Equal(t, "1.104166667in", sum.String())
}

func TestAddIncompatibleUnits(t *testing.T) {
	a := NumUnit(1, "px")
	b := NumUnit(1, "s")
	_, err := Add(a, b, sasserror.Span{})
	require.Error(t, err)
}

func TestMultiplyCancelsUnits(t *testing.T) {
	a := NumUnit(2, "px")
	b := &Value{Kind: KindNumber, Number: 3, Denominator: []string{"px"}}
	product, err := Multiply(a, b, sasserror.Span{})
	require.NoError(t, err)
	require.Equal(t, "6", product.String())
}

func TestFuzzyEquality(t *testing.T) {
	a := NumUnit(1, "in")
	b := NumUnit(96, "px")
	require.True(t, Equal(a, b))
}

func TestStringConcat(t *testing.T) {
	a := QuotedStr("foo")
	b := Str("bar")
	sum, err := Add(a, b, sasserror.Span{})
	require.NoError(t, err)
	require.Equal(t, "foobar", sum.Str)
}

func TestMapSetPreservesOrder(t *testing.T) {
	m := &Value{Kind: KindMap}
	m = MapSet(m, Str("a"), Num(1))
	m = MapSet(m, Str("b"), Num(2))
	m = MapSet(m, Str("a"), Num(3))
	require.Len(t, m.MapKeys, 2)
	require.Equal(t, "3", m.MapValues[0].String())
}

func TestColorHexRoundTrip(t *testing.T) {
	c, err := ParseHex("#ff0000")
	require.NoError(t, err)
	require.Equal(t, "#ff0000", c.String())
}

func TestColorMix(t *testing.T) {
	red, _ := ParseHex("#ff0000")
	blue, _ := ParseHex("#0000ff")
	purple := Mix(red, blue, 50)
	require.Equal(t, uint8(0x80), purple.R)
	require.Equal(t, uint8(0x80), purple.B)
}

func TestTruthiness(t *testing.T) {
	require.True(t, Num(0).IsTruthy())
	require.True(t, QuotedStr("").IsTruthy())
	require.False(t, Null.IsTruthy())
	require.False(t, Bool(false).IsTruthy())
}
