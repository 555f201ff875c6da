package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceStateColor(t *testing.T) {
	tests := []struct {
		state    string
		expected string
	}{
		{"active", string(ColorSuccess)},
		{"inactive", string(ColorError)},
		{"failed", string(ColorError)},
		{"activating", string(ColorWarning)},
		{"deactivating", string(ColorWarning)},
		{"reloading", string(ColorWarning)},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(ServiceStateColor(tt.state)))
		})
	}
}

func TestServiceStateSymbol(t *testing.T) {
	assert.Equal(t, SymbolActive, ServiceStateSymbol("active"))
	assert.Equal(t, SymbolPending, ServiceStateSymbol("inactive"))
	assert.Equal(t, SymbolFail, ServiceStateSymbol("failed"))
	assert.Equal(t, SymbolProgress, ServiceStateSymbol("activating"))
}

func TestRenderStateBadge(t *testing.T) {
	badge := stripANSI(RenderStateBadge("active"))
	assert.Equal(t, SymbolActive+" active", badge)

	badge = stripANSI(RenderStateBadge("failed"))
	assert.Equal(t, SymbolFail+" failed", badge)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "42.5%", FormatPercent(42.5))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "9.8 GB", FormatGB(9.8))
	assert.Equal(t, "9.8 / 16.0 GB", FormatUsage(9.8, 16))
}
