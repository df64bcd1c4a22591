package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoneyFromFloat(1250.50, USD)
	require.NoError(t, err)
	assert.Equal(t, USD, m.Currency())
	assert.InDelta(t, 1250.50, m.Float64(), 1e-9)
	assert.False(t, m.IsZero())

	_, err = NewMoneyFromFloat(10, "JPY")
	assert.Error(t, err)
}

func TestMoneyComparisons(t *testing.T) {
	low := MustNewMoneyFromFloat(400, USD)
	high := MustNewMoneyFromFloat(1200, USD)

	assert.True(t, low.LessThan(high))
	assert.True(t, high.GreaterThan(low))
	assert.False(t, low.GreaterThan(high))
	assert.True(t, Zero(USD).IsZero())
}

func TestMoneyMulFloat(t *testing.T) {
	m := MustNewMoneyFromFloat(1200, USD).MulFloat(1.5)
	assert.InDelta(t, 1800.0, m.Float64(), 1e-9)
	assert.Equal(t, USD, m.Currency())
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "1250.50 USD", MustNewMoneyFromFloat(1250.5, USD).String())
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(MustNewMoneyFromFloat(1250.5, USD))
	require.NoError(t, err)
	assert.Equal(t, "1250.50", string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte("980.25"), &m))
	assert.InDelta(t, 980.25, m.Float64(), 1e-9)
	assert.Equal(t, USD, m.Currency())

	assert.Error(t, json.Unmarshal([]byte(`"a lot"`), &m))
}
