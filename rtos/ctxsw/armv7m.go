package ctxsw

import "encoding/binary"

const (
	// ExcReturnThreadPSP returns from the switch exception to thread mode on
	// the process stack.
	ExcReturnThreadPSP uint32 = 0xFFFFFFFD
	// PSRThumb is the xPSR value with only the Thumb bit set.
	PSRThumb uint32 = 0x01000000

	// FrameBytes is the hardware-stacked exception frame: r0-r3, r12, lr, pc, xpsr.
	FrameBytes = 8 * 4

	coreWords = 12
)

// Registers is the ARMv7-M state a switch preserves: the callee-saved core
// registers, the stack pointer, the exception return, the resume address and
// the high floating-point bank. Caller-saved registers travel in the
// hardware-stacked frame.
type Registers struct {
	R   [8]uint32 // r4-r11
	SP  uint32
	LR  uint32
	PC  uint32
	PSR uint32
	S   [16]uint32 // s16-s31
}

func (r *Registers) core() [coreWords]uint32 {
	return [coreWords]uint32{
		r.R[0], r.R[1], r.R[2], r.R[3], r.R[4], r.R[5], r.R[6], r.R[7],
		r.SP, r.LR, r.PC, r.PSR,
	}
}

func (r *Registers) setCore(w [coreWords]uint32) {
	copy(r.R[:], w[:8])
	r.SP = w[8]
	r.LR = w[9]
	r.PC = w[10]
	r.PSR = w[11]
}

// Switcher performs save/restore against the live register file.
type Switcher struct {
	live Registers
}

// Live returns the live register file.
func (s *Switcher) Live() *Registers { return &s.live }

// Save persists the live context into b. The floating-point bank is copied
// only when fpu is set. Callers hold interrupts disabled.
func (s *Switcher) Save(b *Blob, fpu bool) {
	b.encode(&s.live, fpu)
}

// Restore loads b into the live register file. A blob saved without the
// floating-point bank leaves the live bank as it is.
func (s *Switcher) Restore(b *Blob) error {
	if !b.Valid() {
		return ErrInvalidBlob
	}
	b.decode(&s.live)
	return nil
}

// Init prepares b for a task that has not run yet. stack is the task's
// region and base its address; the hardware exception frame is written at
// the top of the region so the first exception return lands on entry.
func (s *Switcher) Init(b *Blob, stack []byte, base uint32, entry uint32, fpu bool) error {
	top := len(stack) &^ 7
	if top < FrameBytes {
		return ErrStackTooSmall
	}
	frame := stack[top-FrameBytes : top]
	for i := range frame {
		frame[i] = 0
	}
	binary.LittleEndian.PutUint32(frame[5*4:], ExcReturnThreadPSP)
	binary.LittleEndian.PutUint32(frame[6*4:], entry)
	binary.LittleEndian.PutUint32(frame[7*4:], PSRThumb)

	regs := Registers{
		SP:  base + uint32(top-FrameBytes),
		LR:  ExcReturnThreadPSP,
		PC:  entry,
		PSR: PSRThumb,
	}
	b.encode(&regs, fpu)
	return nil
}
