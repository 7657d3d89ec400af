package ctxsw

import (
	"encoding/binary"
	"errors"
	"testing"
)

func canary(r *Registers) {
	for i := range r.R {
		r.R[i] = 0xCA000000 | uint32(i+4)
	}
	r.SP = 0x20001F00
	r.LR = ExcReturnThreadPSP
	r.PC = 0x08000421
	r.PSR = PSRThumb | 0x0F
	for i := range r.S {
		r.S[i] = 0xF1000000 | uint32(i+16)
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	var sw Switcher
	var b Blob
	canary(sw.Live())
	want := *sw.Live()

	sw.Save(&b, true)
	*sw.Live() = Registers{}
	if err := sw.Restore(&b); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := *sw.Live(); got != want {
		t.Fatalf("Restore() registers = %+v, want %+v", got, want)
	}
}

func TestSaveWithoutFPUSkipsBank(t *testing.T) {
	var sw Switcher
	var b Blob
	canary(sw.Live())
	want := *sw.Live()

	sw.Save(&b, false)
	if b.FPU() {
		t.Fatal("FPU() = true for a save without the bank")
	}

	clobber := Registers{}
	clobber.S[0] = 0xDEAD
	*sw.Live() = clobber
	if err := sw.Restore(&b); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	got := *sw.Live()
	if got.R != want.R || got.SP != want.SP || got.PC != want.PC || got.LR != want.LR || got.PSR != want.PSR {
		t.Fatalf("Restore() core = %+v, want %+v", got, want)
	}
	if got.S[0] != 0xDEAD {
		t.Fatalf("Restore() S[0] = %#x, want live bank untouched", got.S[0])
	}
}

func TestRestoreInvalidBlob(t *testing.T) {
	var sw Switcher
	var b Blob
	if err := sw.Restore(&b); !errors.Is(err, ErrInvalidBlob) {
		t.Fatalf("Restore() error = %v, want ErrInvalidBlob", err)
	}

	sw.Save(&b, false)
	b.Invalidate()
	if err := sw.Restore(&b); !errors.Is(err, ErrInvalidBlob) {
		t.Fatalf("Restore() after Invalidate error = %v, want ErrInvalidBlob", err)
	}
}

func TestInitBuildsExceptionFrame(t *testing.T) {
	var sw Switcher
	var b Blob
	stack := make([]byte, 256)
	const base = 0x20000000
	const entry = 0x08000101

	if err := sw.Init(&b, stack, base, entry, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	canary(sw.Live())
	if err := sw.Restore(&b); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	live := sw.Live()
	if live.SP != base+256-FrameBytes {
		t.Fatalf("SP = %#x, want %#x", live.SP, base+256-FrameBytes)
	}
	if live.PC != entry {
		t.Fatalf("PC = %#x, want %#x", live.PC, entry)
	}
	for i, r := range live.R {
		if r != 0 {
			t.Fatalf("R%d = %#x, want 0", i+4, r)
		}
	}

	frame := stack[256-FrameBytes:]
	if got := binary.LittleEndian.Uint32(frame[6*4:]); got != entry {
		t.Fatalf("stacked pc = %#x, want %#x", got, entry)
	}
	if got := binary.LittleEndian.Uint32(frame[7*4:]); got != PSRThumb {
		t.Fatalf("stacked xpsr = %#x, want %#x", got, PSRThumb)
	}
}

func TestInitStackTooSmall(t *testing.T) {
	var sw Switcher
	var b Blob
	if err := sw.Init(&b, make([]byte, 16), 0, 0, false); !errors.Is(err, ErrStackTooSmall) {
		t.Fatalf("Init() error = %v, want ErrStackTooSmall", err)
	}
}
