package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cleared-dev/glcore/internal/config"
	"github.com/cleared-dev/glcore/internal/errcode"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("chatty")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNew(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	dev, err := New(config.LoggingConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	_, err = New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestCodeLevel(t *testing.T) {
	tests := []struct {
		code errcode.Code
		want zapcore.Level
	}{
		{errcode.InactiveAccounts, zapcore.WarnLevel},
		{errcode.CurrencyMismatch, zapcore.WarnLevel},
		{errcode.PaymentProcessingError, zapcore.ErrorLevel},
		{errcode.Code("SOMETHING_ELSE"), zapcore.ErrorLevel},
		{errcode.UnbalancedJournal, zapcore.InfoLevel},
		{errcode.PaymentValidationFailed, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeLevel(tt.code), "code %s", tt.code)
	}
}
