package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-tryon/pkg/debug"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"gocv.io/x/gocv"
)

// YuNet output columns: box (4), five landmark x,y pairs (10), score (1)
const (
	yunetLandmarkCol = 4
	yunetScoreCol    = 14
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	// Input size is updated per image
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		float32(cfg.NMSThresh),
		5000,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// Detect finds faces in the JPEG image
func (d *YuNetDetector) Detect(jpeg []byte) ([]Face, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	return d.DetectMat(img)
}

// DetectMat finds faces in a decoded BGR frame
func (d *YuNetDetector) DetectMat(img gocv.Mat) ([]Face, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	out := gocv.NewMat()
	defer out.Close()

	d.detector.Detect(img, &out)

	var faces []Face
	for r := 0; r < out.Rows(); r++ {
		x := float64(out.GetFloatAt(r, 0))
		y := float64(out.GetFloatAt(r, 1))
		w := float64(out.GetFloatAt(r, 2))
		h := float64(out.GetFloatAt(r, 3))

		face := Face{
			Detection: Detection{
				X:          x / imgW,
				Y:          y / imgH,
				W:          w / imgW,
				H:          h / imgH,
				Confidence: float64(out.GetFloatAt(r, yunetScoreCol)),
			},
		}
		for i := range face.Landmarks {
			col := yunetLandmarkCol + 2*i
			face.Landmarks[i] = landmarks.Point2D{
				X: float64(out.GetFloatAt(r, col)),
				Y: float64(out.GetFloatAt(r, col+1)),
			}
		}
		faces = append(faces, face)
	}

	if len(faces) > 0 {
		debug.Log("YuNet found %d face(s)", len(faces))
	}

	return faces, nil
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
