// Package ctxsw is the context-switch primitive: saving the running task's
// register state into its control block and loading the next one.
//
// The scheduler calls a concrete Switcher directly. Exactly one
// implementation is linked into a build; this package carries the reference
// ARMv7-M register layout and a switcher that keeps the live register file in
// memory, which is what hosted builds and the simulator run on.
package ctxsw

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrInvalidBlob is returned when restoring a blob that was never saved
	// or initialized.
	ErrInvalidBlob = errors.New("ctxsw: blob holds no saved context")
	// ErrStackTooSmall is returned when a stack region cannot hold the
	// initial exception frame.
	ErrStackTooSmall = errors.New("ctxsw: stack region too small for initial frame")
)

// BlobSize is the size of a saved context.
const BlobSize = 128

// Blob is the opaque saved context of one task.
type Blob [BlobSize]byte

const (
	flagValid byte = 1 << iota
	flagFPU
)

const (
	offFlags = 0
	offCore  = 4
	offFPU   = offCore + coreWords*4
)

// Valid reports whether the blob holds a saved or initialized context.
func (b *Blob) Valid() bool { return b[offFlags]&flagValid != 0 }

// FPU reports whether the blob carries the floating-point bank.
func (b *Blob) FPU() bool { return b[offFlags]&flagFPU != 0 }

// Invalidate marks the blob as holding no context.
func (b *Blob) Invalidate() { b[offFlags] = 0 }

func (b *Blob) encode(r *Registers, fpu bool) {
	flags := flagValid
	words := r.core()
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[offCore+i*4:], w)
	}
	if fpu {
		flags |= flagFPU
		for i, w := range r.S {
			binary.LittleEndian.PutUint32(b[offFPU+i*4:], w)
		}
	}
	b[offFlags] = flags
}

func (b *Blob) decode(r *Registers) {
	var words [coreWords]uint32
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[offCore+i*4:])
	}
	r.setCore(words)
	if b.FPU() {
		for i := range r.S {
			r.S[i] = binary.LittleEndian.Uint32(b[offFPU+i*4:])
		}
	}
}
