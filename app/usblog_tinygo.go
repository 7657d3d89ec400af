//go:build tinygo && usblog

package app

import (
	"machine"

	"cadence/hal"
)

// usbTee mirrors log lines to USB CDC so early boot output can be caught
// without a UART adapter.
type usbTee struct {
	l hal.Logger
}

func (t usbTee) WriteLineString(s string) {
	t.WriteLineBytes([]byte(s))
}

func (t usbTee) WriteLineBytes(b []byte) {
	if t.l != nil {
		t.l.WriteLineBytes(b)
	}
	if usb := machine.USBCDC; usb != nil {
		_, _ = usb.Write(b)
		_, _ = usb.Write([]byte("\r\n"))
	}
}

func logSink(l hal.Logger) hal.Logger { return usbTee{l: l} }
