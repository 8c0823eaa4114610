package orientation

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_display/internal/imu"
)

const eps = 1e-12

func newEngine(t *testing.T, yaw bool) *Engine {
	t.Helper()
	cfg := DefaultEngineConfig()
	cfg.YawEnabled = yaw
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func assertVec(t *testing.T, want, got r3.Vector) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "X")
	assert.InDelta(t, want.Y, got.Y, eps, "Y")
	assert.InDelta(t, want.Z, got.Z, eps, "Z")
}

func TestAxes_Zero(t *testing.T) {
	axis, up := Axes(0, 0, 0)
	assertVec(t, r3.Vector{X: 1, Y: 0, Z: 0}, axis)
	assertVec(t, r3.Vector{X: 0, Y: 0, Z: -1}, up)
}

func TestAxes_UnitAndOrthogonal(t *testing.T) {
	angles := []float64{-math.Pi, -2, -0.7, -0.1, 0, 0.3, 1.1, 2.5, math.Pi}
	for _, r := range angles {
		for _, p := range angles {
			for _, y := range angles {
				axis, up := Axes(r, p, y)
				assert.InDelta(t, 1, axis.Norm(), 1e-9)
				assert.InDelta(t, 1, up.Norm(), 1e-9)
				assert.InDelta(t, 0, axis.Dot(up), 1e-9, "r=%v p=%v y=%v", r, p, y)
			}
		}
	}
}

func TestAxes_PitchUp(t *testing.T) {
	axis, up := Axes(0, math.Pi/2, 0)
	assertVec(t, r3.Vector{X: 0, Y: 0, Z: 1}, axis)
	assertVec(t, r3.Vector{X: 1, Y: 0, Z: 0}, up)
}

func TestAxes_GimbalLock(t *testing.T) {
	// At ±90° pitch the axis is vertical whatever roll and yaw are.
	for _, p := range []float64{math.Pi / 2, -math.Pi / 2} {
		for _, r := range []float64{0, 0.5, -1.2} {
			for _, y := range []float64{0, 0.8, 2} {
				axis, up := Axes(r, p, y)
				assert.InDelta(t, 0, axis.X, 1e-12)
				assert.InDelta(t, 0, axis.Y, 1e-12)
				assert.InDelta(t, math.Copysign(1, p), axis.Z, 1e-12)
				assert.InDelta(t, 0, up.Z, 1e-12)
				assert.InDelta(t, 1, up.Norm(), 1e-9)
				assert.False(t, math.IsNaN(up.X) || math.IsNaN(up.Y))
			}
		}
	}
}

func TestAxes_RollOnly(t *testing.T) {
	axis, up := Axes(math.Pi/2, 0, 0)
	assertVec(t, r3.Vector{X: 1}, axis)
	assertVec(t, r3.Vector{Y: 1}, up)
}

func TestEngine_FirstFrameIsLevel(t *testing.T) {
	f, err := imu.ParseLine("A\t1\t550.0\t600.0\t512.0\tZ\n")
	require.NoError(t, err)

	var c Calibration
	c.MaybeInitialize(f)

	for _, yaw := range []bool{false, true} {
		s := newEngine(t, yaw).Compute(f, c.Offsets())
		assert.Zero(t, s.Roll)
		assert.Zero(t, s.Pitch)
		assert.Zero(t, s.Yaw)
		assertVec(t, r3.Vector{X: 1}, s.Axis)
		assertVec(t, r3.Vector{Z: -1}, s.Up)
	}
}

func TestEngine_CalibratedAngles(t *testing.T) {
	e := newEngine(t, true)
	f := imu.Frame{Roll: 612, Pitch: 500, Yaw: 812}
	s := e.Compute(f, Offsets{Roll: 512, Pitch: 600, Yaw: 512})

	assert.InDelta(t, 100*DefaultUnitAdjust*math.Pi/180, s.Roll, eps)
	assert.InDelta(t, -100*DefaultUnitAdjust*math.Pi/180, s.Pitch, eps)
	assert.InDelta(t, 300*DefaultUnitAdjust*math.Pi/180, s.Yaw, eps)

	pose := s.Pose()
	assert.InDelta(t, 29.999, pose.Roll, 1e-9)
	assert.InDelta(t, -29.999, pose.Pitch, 1e-9)
	assert.InDelta(t, 89.997, pose.Yaw, 1e-9)

	axis, up := Axes(s.Roll, s.Pitch, s.Yaw)
	assert.Equal(t, axis, s.Axis)
	assert.Equal(t, up, s.Up)
}

func TestEngine_YawDisabledByDefault(t *testing.T) {
	e := newEngine(t, false)
	for _, raw := range []float64{-1000, 0, 3, 512, 1e6} {
		s := e.Compute(imu.Frame{Roll: 10, Pitch: 20, Yaw: raw}, Offsets{})
		assert.Zero(t, s.Yaw)
		assert.Equal(t, "0.0", e.Display(s).Yaw)
	}
}

func TestNewEngine_Validation(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.UnitAdjust = 0
	_, err := NewEngine(cfg)
	assert.Error(t, err)

	cfg = DefaultEngineConfig()
	cfg.UnitAdjust = math.NaN()
	_, err = NewEngine(cfg)
	assert.Error(t, err)

	cfg = DefaultEngineConfig()
	cfg.TextWidth = 0
	_, err = NewEngine(cfg)
	assert.Error(t, err)
}

func TestEngine_Display(t *testing.T) {
	e := newEngine(t, true)
	s := e.Compute(imu.Frame{Roll: 100, Pitch: -41.15226337448559, Yaw: 1}, Offsets{})
	d := e.Display(s)
	// 100 * 0.29999 = 29.999
	assert.Equal(t, "29.999", d.Roll)
	assert.Equal(t, "-12.34", d.Pitch)
	assert.Equal(t, "0.2999", d.Yaw)
}

func TestEngine_DisplayHidesRoundTripNoise(t *testing.T) {
	e := newEngine(t, true)
	tests := []struct {
		raw  float64
		want string
	}{
		{30, "8.9997"},
		{1000, "299.99"},
		{-30, "-8.999"},
	}
	for _, tt := range tests {
		d := e.Display(e.Compute(imu.Frame{Roll: tt.raw}, Offsets{}))
		assert.Equal(t, tt.want, d.Roll, "raw %v", tt.raw)
	}
}
