package emu

// FrameCycles is one full 154-line frame at 4.194304 MHz.
const FrameCycles = 70224

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace       bool   // log CPU instructions
	LogLevel    string // debug, info, warn, error
	BatteryPath string // cartridge RAM file for battery-backed carts; empty disables
	FrameCycles int    // cycles per StepFrame; zero means FrameCycles
}

func DefaultConfig() Config {
	return Config{LogLevel: "info", FrameCycles: FrameCycles}
}
