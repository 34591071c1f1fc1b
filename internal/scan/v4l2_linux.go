//go:build linux

package scan

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/blackjack/webcam"
)

// V4L2 fourcc codes for the pixel formats we can convert.
const (
	pixelFormatYUYV  = webcam.PixelFormat(0x56595559) // 'YUYV'
	pixelFormatMJPEG = webcam.PixelFormat(0x47504A4D) // 'MJPG'
)

var rearCameraName = regexp.MustCompile(`(?i)back|rear|environment`)

// OpenCamera acquires a V4L2 camera stream. With an explicit device it opens
// exactly that device; otherwise it degrades through a preference order:
// a device whose reported name looks rear-facing, then the first device
// enumerated. All failures come back as *CameraUnavailableError.
func OpenCamera(device string) (Source, error) {
	path, err := pickDevice(device)
	if err != nil {
		return nil, err
	}

	cam, err := webcam.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, unavailable(path, "permission denied", err)
		}
		return nil, unavailable(path, "opening device", err)
	}

	format, ok := pickFormat(cam.GetSupportedFormats())
	if !ok {
		cam.Close()
		return nil, unavailable(path, "no supported pixel format (need YUYV or MJPEG)", nil)
	}

	f, w, h, err := cam.SetImageFormat(format, DefaultWidth, DefaultHeight)
	if err != nil {
		cam.Close()
		return nil, unavailable(path, "negotiating image format", err)
	}

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, unavailable(path, "starting stream", err)
	}

	return &v4l2Source{cam: cam, device: path, format: f, width: w, height: h}, nil
}

// pickDevice resolves the device path to open. The rear-facing preference
// mirrors how a phone scanner defaults to the environment camera.
func pickDevice(device string) (string, error) {
	if device != "" {
		return device, nil
	}

	paths, err := filepath.Glob("/dev/video*")
	if err != nil || len(paths) == 0 {
		return "", unavailable("", "no camera present", err)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if rearCameraName.MatchString(deviceName(p)) {
			return p, nil
		}
	}
	return paths[0], nil
}

// deviceName reads the kernel-reported card name for a /dev/videoN node.
func deviceName(path string) string {
	base := filepath.Base(path)
	data, err := os.ReadFile(filepath.Join("/sys/class/video4linux", base, "name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func pickFormat(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	if _, ok := formats[pixelFormatYUYV]; ok {
		return pixelFormatYUYV, true
	}
	if _, ok := formats[pixelFormatMJPEG]; ok {
		return pixelFormatMJPEG, true
	}
	return 0, false
}

// v4l2Source is the Linux camera Source. It owns the webcam handle
// exclusively; Close is idempotent.
type v4l2Source struct {
	cam    *webcam.Webcam
	device string
	format webcam.PixelFormat
	width  uint32
	height uint32

	mu     sync.Mutex
	closed bool
}

// Frame implements Source. A frame that is not ready yet yields (nil, nil);
// a dead stream yields ErrStreamEnded.
func (s *v4l2Source) Frame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamEnded
	}

	err := s.cam.WaitForFrame(1)
	switch err.(type) {
	case nil:
	case *webcam.Timeout:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
	}

	buf, err := s.cam.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
	}
	if len(buf) == 0 {
		return nil, nil
	}

	switch s.format {
	case pixelFormatMJPEG:
		return decodeMJPEG(buf)
	default:
		return yuyvToRGBA(buf, int(s.width), int(s.height)), nil
	}
}

// Close implements Source.
func (s *v4l2Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cam.StopStreaming()
	return s.cam.Close()
}

func decodeMJPEG(buf []byte) (*image.RGBA, error) {
	img, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		// A torn frame; skip it rather than killing the loop.
		return nil, nil
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out, nil
}

// yuyvToRGBA converts a packed YUYV 4:2:2 buffer using BT.601 coefficients.
func yuyvToRGBA(buf []byte, width, height int) *image.RGBA {
	if width <= 0 || height <= 0 || len(buf) < width*height*2 {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := y * width * 2
		for x := 0; x < width; x += 2 {
			i := row + x*2
			y0 := int(buf[i])
			u := int(buf[i+1]) - 128
			y1 := int(buf[i+2])
			v := int(buf[i+3]) - 128
			setYUV(out, x, y, y0, u, v)
			if x+1 < width {
				setYUV(out, x+1, y, y1, u, v)
			}
		}
	}
	return out
}

func setYUV(img *image.RGBA, x, y, lum, u, v int) {
	r := lum + (351*v)>>8
	g := lum - ((179*v)+(86*u))>>8
	b := lum + (443*u)>>8
	o := img.PixOffset(x, y)
	img.Pix[o] = clamp8(r)
	img.Pix[o+1] = clamp8(g)
	img.Pix[o+2] = clamp8(b)
	img.Pix[o+3] = 0xff
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
