package money_test

import (
	"encoding/json"
	"testing"

	"winestore/pkg/money"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	// Grouped-digit strings with ',' or '.' separators
	a, err := money.Parse("55,000")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(55000), a)

	a, err = money.Parse("1.250.000")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(1250000), a)

	// Plain digits are fine too
	a, err = money.Parse("30000")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(30000), a)

	// Empty and malformed input is rejected
	_, err = money.Parse("")
	assert.Error(t, err)

	_, err = money.Parse("55,000đ")
	assert.Error(t, err)

	_, err = money.Parse("-5000")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "0", money.Amount(0).String())
	assert.Equal(t, "999", money.Amount(999).String())
	assert.Equal(t, "55,000", money.Amount(55000).String())
	assert.Equal(t, "150,000", money.Amount(150000).String())
	assert.Equal(t, "1,250,000", money.Amount(1250000).String())
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(money.Amount(142500))
	assert.NoError(t, err)
	assert.Equal(t, `"142,500"`, string(data))

	var a money.Amount
	assert.NoError(t, json.Unmarshal([]byte(`"142,500"`), &a))
	assert.Equal(t, money.Amount(142500), a)

	// Bare numbers from older clients are accepted
	assert.NoError(t, json.Unmarshal([]byte(`290000`), &a))
	assert.Equal(t, money.Amount(290000), a)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
}
