package app

import (
	"fmt"

	"cadence/rtos/kernel"
)

// Config selects runtime behavior of the firmware.
type Config struct {
	// Policy is "rms-bound" (default) or "utilization".
	Policy string `toml:"policy"`
	// OverrunLimit halts the kernel after this many overruns of one task.
	OverrunLimit uint32 `toml:"overrun_limit"`

	LogLevel string `toml:"log_level"`
	Pretty   bool   `toml:"pretty"`

	// Console draws the boot banner on the display.
	Console bool `toml:"console"`
	// Audio starts the PWM output; the DAC task drops samples otherwise.
	Audio  bool  `toml:"audio"`
	Volume uint8 `toml:"volume"`

	// HoldOnHalt keeps Run blocked on a halt until ctx is done so the halt
	// screen stays up.
	HoldOnHalt bool `toml:"hold_on_halt"`
}

// DefaultConfig is used by boards without a config source.
func DefaultConfig() Config {
	return Config{
		Policy:   kernel.PolicyRMSBound.String(),
		LogLevel: "info",
		Console:  true,
		Audio:    true,
		Volume:   128,
	}
}

func (c Config) policy() (kernel.Policy, error) {
	if c.Policy == "" {
		return kernel.PolicyRMSBound, nil
	}
	p, ok := kernel.ParsePolicy(c.Policy)
	if !ok {
		return 0, fmt.Errorf("unknown policy %q", c.Policy)
	}
	return p, nil
}
