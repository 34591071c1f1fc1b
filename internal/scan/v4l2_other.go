//go:build !linux

package scan

// OpenCamera reports the camera as unavailable on platforms without V4L2
// support. Sessions on these platforms must inject their own Source.
func OpenCamera(device string) (Source, error) {
	return nil, unavailable(device, "camera capture requires linux (v4l2)", nil)
}
