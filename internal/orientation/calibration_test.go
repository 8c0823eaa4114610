package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_display/internal/imu"
)

func frame(t *testing.T, line string) imu.Frame {
	t.Helper()
	f, err := imu.ParseLine(line)
	require.NoError(t, err)
	return f
}

func TestCalibration_StartsUnset(t *testing.T) {
	var c Calibration
	assert.False(t, c.IsSet())
	assert.Equal(t, Offsets{}, c.Offsets())
}

func TestCalibration_FirstFrameBecomesReference(t *testing.T) {
	var c Calibration
	first := frame(t, "A\t1\t550.0\t600.0\t512.0\tZ\n")

	assert.True(t, c.MaybeInitialize(first))
	assert.True(t, c.IsSet())
	assert.Equal(t, Offsets{Roll: 550, Pitch: 600, Yaw: 512}, c.Offsets())

	// Later frames do not move the reference.
	assert.False(t, c.MaybeInitialize(frame(t, "A\t2\t1\t2\t3\tZ\n")))
	assert.Equal(t, Offsets{Roll: 550, Pitch: 600, Yaw: 512}, c.Offsets())
}

func TestCalibration_ResetOverwrites(t *testing.T) {
	var c Calibration
	c.MaybeInitialize(frame(t, "A\t1\t550\t600\t512\tZ\n"))

	c.Reset(frame(t, "A\t9\t10\t20\t30\tZ\n"))
	assert.Equal(t, Offsets{Roll: 10, Pitch: 20, Yaw: 30}, c.Offsets())
}

func TestCalibration_ResetBeforeAnyFrameGivesZero(t *testing.T) {
	var c Calibration
	c.Reset(imu.PlaceholderFrame())
	assert.True(t, c.IsSet())
	assert.Equal(t, Offsets{}, c.Offsets())
}

func TestCalibration_ResetIsIdempotent(t *testing.T) {
	var c Calibration
	last := frame(t, "A\t3\t101.5\t-7.25\t400\tZ\n")

	c.Reset(last)
	first := c.Offsets()
	c.Reset(last)
	assert.Equal(t, first, c.Offsets())
}
