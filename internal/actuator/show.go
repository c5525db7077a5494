package actuator

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

func (c *Controller) startShow(p Pattern, d time.Duration) {
	delete(c.motions, DeviceLight)
	c.show = LightShow{Active: true, Start: c.now(), Duration: d, Pattern: p}
	c.changed()
}

// stopShow ends a running show and puts the steady brightness back.
func (c *Controller) stopShow() {
	if !c.show.Active {
		return
	}
	c.show = LightShow{}
	c.writeNow(DeviceLight, c.light.Brightness)
	c.renderStrip()
	c.changed()
}

func (c *Controller) tickShow(now time.Time) {
	if !c.show.Active {
		return
	}
	if c.show.Expired(now) {
		c.show = LightShow{}
		if c.light.Mode == LightAlert || c.light.Mode == LightParty {
			c.light.Mode = LightNormal
		}
		c.writeNow(DeviceLight, c.light.Brightness)
		c.renderStrip()
		c.changed()
		return
	}

	elapsed := now.Sub(c.show.Start).Seconds()
	level := showLevel(c.show.Pattern, c.light.Brightness, elapsed)
	c.writeNow(DeviceLight, level)
	c.renderShowFrame(elapsed, level)
}

// showLevel is the light channel's brightness during a show.
func showLevel(p Pattern, brightness int, elapsed float64) int {
	switch p {
	case PatternPulse:
		return int(float64(brightness) * (0.5 + 0.5*math.Sin(math.Pi*elapsed)))
	case PatternStrobe:
		if int(elapsed*8)%2 == 0 {
			return brightness
		}
		return 0
	case PatternAlert:
		if int(elapsed*4)%2 == 0 {
			return brightness
		}
		return 0
	default:
		return brightness
	}
}

func scaled(col colorful.Color, level int) colorful.Color {
	f := float64(level) / 255
	return colorful.Color{R: col.R * f, G: col.G * f, B: col.B * f}
}

func (c *Controller) renderShowFrame(elapsed float64, level int) {
	s := c.out.Strip
	if s == nil {
		return
	}
	n := s.Len()
	for i := 0; i < n; i++ {
		var col colorful.Color
		switch c.show.Pattern {
		case PatternRainbow:
			hue := math.Mod(elapsed*60+float64(i)*360/float64(n), 360)
			col = scaled(colorful.Hsv(hue, 1, 1), level)
		case PatternAlert:
			col = scaled(alertRed, level)
		default:
			col = scaled(c.light.Color, level)
		}
		s.SetPixel(i, col)
	}
	if err := s.Show(); err != nil {
		c.logger.Warn("strip update failed", "error", err)
	}
}

// renderStrip paints the steady colour at the light's current level.
func (c *Controller) renderStrip() {
	s := c.out.Strip
	if s == nil || c.show.Active {
		return
	}
	level := c.light.Brightness
	if c.out.Light != nil {
		level = c.level(DeviceLight)
	}
	col := scaled(c.light.Color, level)
	for i := 0; i < s.Len(); i++ {
		s.SetPixel(i, col)
	}
	if err := s.Show(); err != nil {
		c.logger.Warn("strip update failed", "error", err)
	}
}
