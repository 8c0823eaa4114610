package app

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type fakePanel struct {
	frames []image.Image
	err    error
}

func (p *fakePanel) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (p *fakePanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	p.frames = append(p.frames, src)
	return p.err
}

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestRenderOrientation_DrawsText(t *testing.T) {
	img := renderOrientation(sampleReading(3))
	assert.Equal(t, image.Rect(0, 0, 128, 64), img.Bounds())
	assert.Greater(t, litPixels(img), 0)

	// Different texts give different images.
	other := sampleReading(3)
	other.Text.Roll = "-45.00"
	assert.NotEqual(t, img.Pix, renderOrientation(other).Pix)
}

func TestOLED_Throttles(t *testing.T) {
	panel := &fakePanel{}
	o := newOLED(panel, 200*time.Millisecond)
	now := time.Unix(1000, 0)
	o.now = func() time.Time { return now }

	require.NoError(t, o.Publish(sampleReading(1)))
	now = now.Add(100 * time.Millisecond)
	require.NoError(t, o.Publish(sampleReading(2)))
	now = now.Add(100 * time.Millisecond)
	require.NoError(t, o.Publish(sampleReading(3)))

	assert.Len(t, panel.frames, 2)
	assert.NoError(t, o.Close())
}

func TestOLED_DrawError(t *testing.T) {
	panel := &fakePanel{err: errors.New("i2c nack")}
	o := newOLED(panel, 0)
	assert.Error(t, o.Publish(sampleReading(1)))
}

func TestRenderSplash(t *testing.T) {
	assert.Greater(t, litPixels(renderSplash()), 0)
}
