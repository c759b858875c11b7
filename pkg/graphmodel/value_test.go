package graphmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFrom(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"int", 42, IntValue(42)},
		{"int64", int64(7), IntValue(7)},
		{"float", 2.5, FloatValue(2.5)},
		{"string", "abc", StringValue("abc")},
		{"bool", true, BoolValue(true)},
		{"nil", nil, NullValue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueFrom(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ValueFrom([]int{1})
	assert.Error(t, err)
}

func TestValueCompareNumeric(t *testing.T) {
	c, err := IntValue(3).Compare(FloatValue(3.0))
	require.NoError(t, err)
	assert.Zero(t, c)

	c, err = IntValue(2).Compare(IntValue(5))
	require.NoError(t, err)
	assert.Negative(t, c)

	c, err = FloatValue(5.5).Compare(IntValue(5))
	require.NoError(t, err)
	assert.Positive(t, c)
}

func TestValueCompareStrings(t *testing.T) {
	c, err := StringValue("a").Compare(StringValue("b"))
	require.NoError(t, err)
	assert.Negative(t, c)

	assert.True(t, StringValue("x").Equals(StringValue("x")))
}

func TestValueCompareMismatchedKinds(t *testing.T) {
	_, err := StringValue("a").Compare(IntValue(1))
	assert.Error(t, err)

	_, err = IntValue(1).Compare(BoolValue(true))
	assert.Error(t, err)

	assert.False(t, StringValue("1").Equals(IntValue(1)))
}
