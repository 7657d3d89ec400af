//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"cadence/app"
	"cadence/hal"
)

func main() {
	var hcfg hal.HeadlessConfig
	var headless bool
	var configPath, policy string
	var overrunLimit uint
	var pretty bool
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 1000, "Wall-clock sampling rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N timer ticks in headless mode (0 = run forever).")
	flag.StringVar(&configPath, "config", "", "TOML config file.")
	flag.StringVar(&policy, "policy", "", "Admission policy: rms-bound or utilization (overrides config).")
	flag.UintVar(&overrunLimit, "overrun-limit", 0, "Halt after N overruns of one task (overrides config).")
	flag.BoolVar(&pretty, "pretty", false, "Human-readable log lines.")
	flag.Parse()

	cfg := app.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = app.LoadConfig(configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if policy != "" {
		cfg.Policy = policy
	}
	if overrunLimit > 0 {
		cfg.OverrunLimit = uint32(overrunLimit)
	}
	if pretty {
		cfg.Pretty = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if headless {
		cfg.Audio = false
		err = hal.RunHeadless(ctx, func(ctx context.Context, h hal.HAL) error {
			return app.Run(ctx, h, cfg)
		}, hcfg)
	} else {
		cfg.HoldOnHalt = true
		err = hal.RunWindow(ctx, func(ctx context.Context, h hal.HAL) error {
			return app.Run(ctx, h, cfg)
		})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
