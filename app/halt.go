package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"cadence/rtos/kernel"

	"github.com/rs/zerolog"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	haltFont = &proggy.TinySZ8pt7b

	haltBG = color.RGBA{R: 0x80, A: 0xFF}
	haltFG = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

const (
	haltLineHeight = 10
	haltLineOffset = 7
)

func haltLines(e *kernel.HaltError) []string {
	lines := []string{
		"kernel halted",
		fmt.Sprintf("reason: %s", e.Reason),
		fmt.Sprintf("task:   %d (%s)", e.Task, e.Name),
		fmt.Sprintf("tick:   %d", e.Tick),
	}
	if e.Value != nil {
		lines = append(lines, fmt.Sprintf("value:  %v", e.Value))
	}
	if len(e.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(e.Stack), "\n") {
		if line != "" {
			lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
		}
	}
	return lines
}

// logHalt writes the halt report, one stack frame line per record.
func logHalt(log zerolog.Logger, e *kernel.HaltError) {
	log.Error().
		Str("reason", e.Reason.String()).
		Uint8("task", uint8(e.Task)).
		Str("name", e.Name).
		Uint64("tick", e.Tick).
		Interface("value", e.Value).
		Msg("kernel halted")
	for _, line := range strings.Split(string(e.Stack), "\n") {
		if line != "" {
			log.Error().Msg(line)
		}
	}
}

// drawHalt paints the halt report on d, wrapping long lines and stopping at
// the bottom edge. It reports whether anything was drawn.
func drawHalt(d *fbDisplay, e *kernel.HaltError) bool {
	if d == nil {
		return false
	}
	_, adv := tinyfont.LineWidth(haltFont, "0")
	w, h := d.Size()
	if adv == 0 || w <= 0 || h < haltLineHeight {
		return false
	}
	cols := w / int16(adv)

	d.clear(haltBG)
	y := int16(0)
draw:
	for _, line := range haltLines(e) {
		for len(line) > 0 {
			if y+haltLineHeight > h {
				break draw
			}
			var chunk string
			chunk, line = takeRunes(line, cols)
			tinyfont.WriteLine(d, haltFont, 0, y+haltLineOffset, chunk, haltFG)
			y += haltLineHeight
			line = strings.TrimLeft(line, " ")
		}
	}
	_ = d.Display()
	return true
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 {
		return s, ""
	}
	i := 0
	for count := int16(0); i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
