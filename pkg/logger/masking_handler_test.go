package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskingHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("payment submitted",
		slog.String("session_id", "sess-1"),
		slog.String("code", "ABCDE-12345"),
		slog.String("card_number", "4111111111111111"),
		slog.String("CVV", "123"),
		slog.String("password", "hunter2"),
	)

	output := buf.String()
	assert.Contains(t, output, "sess-1")
	assert.NotContains(t, output, "ABCDE-12345")
	assert.NotContains(t, output, "4111111111111111")
	assert.NotContains(t, output, "hunter2")
	assert.Contains(t, output, `"code":"***"`)
	assert.Contains(t, output, `"card_number":"***"`)
	assert.Contains(t, output, `"CVV":"***"`)
}

func TestMaskingHandlerKeepsRegularAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("session opened", slog.String("journey", "guest"), slog.Int("count", 3))

	output := buf.String()
	assert.Contains(t, output, `"journey":"guest"`)
	assert.Contains(t, output, `"count":3`)
}
