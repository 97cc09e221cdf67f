package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattersContainPrefixAndMessage(t *testing.T) {
	tests := map[string]struct {
		fn     func(string) string
		prefix string
	}{
		"Success": {Success, "✓"},
		"Warn":    {Warn, "⚠"},
		"Err":     {Err, "✗"},
		"Info":    {Info, "ℹ"},
		"Hint":    {Hint, "💡"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := tt.fn("test message")
			assert.Contains(t, result, tt.prefix)
			assert.Contains(t, result, "test message")
		})
	}
}

func TestAllFormattersReturnNonEmpty(t *testing.T) {
	formatters := map[string]func(string) string{
		"Addr":  Addr,
		"Val":   Val,
		"Meta":  Meta,
		"Token": Token,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			result := fn("test")
			assert.NotEmpty(t, result, "%s should return non-empty string", name)
			assert.Contains(t, result, "test", "%s should contain the input message", name)
		})
	}
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "", TruncateAddr(""))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))

	addr := "0x3F75dA12899634Ad91E16D230B5a55C576103F10"
	result := TruncateAddr(addr)
	assert.Equal(t, "0x3F75…3F10", result)
	assert.Less(t, len(result), len(addr))
}

func TestPadR(t *testing.T) {
	assert.Equal(t, 10, len(padR("hi", 10)))
	assert.True(t, strings.HasPrefix(padR("hi", 10), "hi"))
	assert.Equal(t, "hello", padR("hello", 5))
	assert.Equal(t, "toolongstring", padR("toolongstring", 5))
	assert.Equal(t, "    ", padR("", 4))
}

func TestBannerHasTagline(t *testing.T) {
	assert.Contains(t, Banner(), "Token sale client")
}
