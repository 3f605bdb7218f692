package camera

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teslashibe/go-tryon/internal/log"
	"gocv.io/x/gocv"
)

var (
	// ErrNotOpened is returned when reading from a closed or unopened capture.
	ErrNotOpened = errors.New("camera not opened")

	// ErrEmptyFrame is returned when the device yields no image.
	ErrEmptyFrame = errors.New("camera returned empty frame")
)

// Capture reads frames from a local webcam through OpenCV.
type Capture struct {
	config Config
	vc     *gocv.VideoCapture
	mu     sync.Mutex
	frames uint64
}

// Open opens the webcam described by cfg.
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	vc, err := openDevice(cfg)
	if err != nil {
		return nil, err
	}

	log.Info("camera opened",
		"device", cfg.Device,
		"width", cfg.Width,
		"height", cfg.Height,
		"mirror", cfg.Mirror)

	return &Capture{config: cfg, vc: vc}, nil
}

func openDevice(cfg Config) (*gocv.VideoCapture, error) {
	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, ErrNotOpened)
	}
	applyProps(vc, cfg)
	return vc, nil
}

func applyProps(vc *gocv.VideoCapture, cfg Config) {
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
}

// Apply switches a running capture to cfg. A new device index reopens the
// camera; everything else is applied in place. It matches
// Manager.OnConfigChange.
func (c *Capture) Apply(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return ErrNotOpened
	}
	if cfg.Device != c.config.Device {
		vc, err := openDevice(cfg)
		if err != nil {
			return err
		}
		c.vc.Close()
		c.vc = vc
	} else {
		applyProps(c.vc, cfg)
	}
	c.config = cfg

	log.Info("camera reconfigured",
		"device", cfg.Device,
		"width", cfg.Width,
		"height", cfg.Height,
		"mirror", cfg.Mirror)
	return nil
}

// Read grabs the next frame into dst, mirrored if configured.
func (c *Capture) Read(dst *gocv.Mat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return ErrNotOpened
	}
	if ok := c.vc.Read(dst); !ok || dst.Empty() {
		return ErrEmptyFrame
	}
	if c.config.Mirror {
		gocv.Flip(*dst, dst, 1)
	}
	c.frames++
	return nil
}

// Config returns the configuration the capture is running with.
func (c *Capture) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Frames returns how many frames have been read.
func (c *Capture) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Close releases the device. It is safe to call more than once.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	return err
}
