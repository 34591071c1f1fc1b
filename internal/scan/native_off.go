//go:build !opencv

package scan

// probeNative reports no native detector in builds without the opencv tag.
// The chain then runs the software decoder only, which is the common
// deployment on small kiosk hardware.
func probeNative() (Decoder, bool) {
	return nil, false
}
