// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// drawer is the part of the SSD1306 we use.
type drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// OLED shows the roll/pitch/yaw texts on a 128x64 SSD1306 display. Frames
// arrive much faster than the I²C bus can refresh the panel, so updates are
// throttled to one per interval.
type OLED struct {
	mu       sync.Mutex
	dev      drawer
	bus      i2c.BusCloser
	halt     func() error
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// OpenOLED initializes periph and the SSD1306 on the named I²C bus ("" is
// the first bus found).
func OpenOLED(busName string, interval time.Duration) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: SSD1306 initialized on %s", bus)

	o := newOLED(dev, interval)
	o.bus = bus
	o.halt = dev.Halt
	if err := o.dev.Draw(o.dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}
	return o, nil
}

func newOLED(dev drawer, interval time.Duration) *OLED {
	return &OLED{dev: dev, interval: interval, now: time.Now}
}

func (o *OLED) Publish(r Reading) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	if !o.last.IsZero() && now.Sub(o.last) < o.interval {
		return nil
	}
	o.last = now
	return o.dev.Draw(o.dev.Bounds(), renderOrientation(r), image.Point{})
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	var err error
	if o.halt != nil {
		err = o.halt()
	}
	if o.bus != nil {
		if cerr := o.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, d
}

func renderOrientation(r Reading) *image1bit.VerticalLSB {
	img, d := newCanvas()

	d.Dot = fixed.P(0, 13)
	d.DrawString("Roll:  " + r.Text.Roll)

	d.Dot = fixed.P(0, 26)
	d.DrawString("Pitch: " + r.Text.Pitch)

	d.Dot = fixed.P(0, 39)
	d.DrawString("Yaw:   " + r.Text.Yaw)

	d.Dot = fixed.P(0, 56)
	d.DrawString(fmt.Sprintf("#%d", r.Seq))

	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, d := newCanvas()

	d.Dot = fixed.P(10, 26)
	d.DrawString("IMU display")

	d.Dot = fixed.P(10, 43)
	d.DrawString("Waiting...")

	return img
}
