package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTimer_StopWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	timer := NewTimer("allocate", log)
	d := timer.StopWithFields(map[string]interface{}{"rows": 3})

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Contains(t, buf.String(), `"operation":"allocate"`)
	assert.Contains(t, buf.String(), `"rows":3`)
}

func TestTimer_DisabledLogger(t *testing.T) {
	timer := NewTimer("noop", zerolog.New(nil).Level(zerolog.Disabled))
	assert.NotPanics(t, func() { timer.Stop() })
}
