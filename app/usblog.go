//go:build !(tinygo && usblog)

package app

import "cadence/hal"

func logSink(l hal.Logger) hal.Logger { return l }
