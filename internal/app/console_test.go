package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Publish(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Publish(sampleReading(1)))
	assert.Equal(t,
		"ROLL=   1.5  PITCH=   0.0  YAW=   0.0  axis=(1.000, 0.000, 0.000) up=(0.000, 0.000, -1.000)\n",
		buf.String())
}
