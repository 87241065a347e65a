package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol(" btc/usdt "))
	assert.Equal(t, "ETHUSDT", NormalizeSymbol("ETH-USDT"))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

func TestMaxWholeLeverage(t *testing.T) {
	assert.Equal(t, 12, LeverageLimits{MaxLeverage: 12.5}.MaxWholeLeverage())
}
