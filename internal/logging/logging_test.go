package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("default level is info", func(t *testing.T) {
		log := New(false)
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	})

	t.Run("debug flag lowers the level", func(t *testing.T) {
		log := New(true)
		assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
	})
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("op", "audit").Msg("run completed")

	out := buf.String()
	assert.Contains(t, out, `"op":"audit"`)
	assert.Contains(t, out, `"message":"run completed"`)
	assert.Contains(t, out, `"time":`)
}
