//go:build tinygo && !baremetal

package hal

import (
	"hash/crc32"
	"strconv"
)

// tinyGoHostFramebuffer has no screen behind it. Present reports a checksum
// of the frame so runs without a window can still tell what was drawn.
type tinyGoHostFramebuffer struct {
	w, h int
	buf  []byte

	logger *tinyGoHostLogger
	frames uint64
	last   uint32
}

func newTinyGoHostFramebuffer(w, h int, logger *tinyGoHostLogger) *tinyGoHostFramebuffer {
	return &tinyGoHostFramebuffer{w: w, h: h, buf: make([]byte, w*h*2), logger: logger}
}

func (f *tinyGoHostFramebuffer) Width() int          { return f.w }
func (f *tinyGoHostFramebuffer) Height() int         { return f.h }
func (f *tinyGoHostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *tinyGoHostFramebuffer) StrideBytes() int    { return f.w * 2 }
func (f *tinyGoHostFramebuffer) Buffer() []byte      { return f.buf }

func (f *tinyGoHostFramebuffer) ClearRGB(r, g, b uint8) {
	p := RGB565(r, g, b)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i], f.buf[i+1] = byte(p), byte(p>>8)
	}
}

// Present logs only frames whose content changed.
func (f *tinyGoHostFramebuffer) Present() error {
	sum := crc32.ChecksumIEEE(f.buf)
	if f.frames > 0 && sum == f.last {
		return nil
	}
	f.frames++
	f.last = sum
	if f.logger != nil {
		f.logger.WriteLineString("fb: frame " + strconv.FormatUint(f.frames, 10) + " crc32 " + strconv.FormatUint(uint64(sum), 16))
	}
	return nil
}
