package ui

// Config contains window and overlay settings.
type Config struct {
	Title   string // window title
	Scale   int    // integer upscaling factor
	ShowHUD bool   // draw PC, LY and TPS over the picture
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
