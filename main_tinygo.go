//go:build tinygo

package main

import (
	"context"

	"cadence/app"
	"cadence/hal"
)

func main() {
	h := hal.New()
	if err := app.Run(context.Background(), h, app.DefaultConfig()); err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("cadence: " + err.Error())
		}
	}
	select {}
}
