//go:build tinygo

package kernel

// TinyGo has no runtime stack dump; the halt screen shows the value only.
func captureStack() []byte {
	return nil
}
