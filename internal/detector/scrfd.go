package detector

import (
	"fmt"
	"image"
	"math"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/facehighlight/internal/inference"
)

const (
	scrfdAnchors   = 2 // anchors per grid cell
	scrfdLandmarks = 5
)

// scrfdStrides are the feature pyramid strides, in the model's output order
var scrfdStrides = [...]int{8, 16, 32}

// scrfdHead names the three output heads, each emitted once per stride
var scrfdHead = [...]struct {
	name  string
	width int64
}{
	{"score", 1},
	{"bbox", 4},
	{"kps", 2 * scrfdLandmarks},
}

// levelOutputs holds the raw head outputs of one pyramid level
type levelOutputs struct {
	scores []float32 // one logit per anchor
	boxes  []float32 // left, top, right, bottom distances per anchor
	kps    []float32 // x, y offsets of the five landmarks per anchor
}

// letterbox describes how a frame was fitted into the square model input
type letterbox struct {
	scale float32     // model pixels per frame pixel
	frame image.Point // original frame size
}

// toFrame converts a point in model input pixels back to frame pixels
func (lb letterbox) toFrame(x, y float32) Point {
	return Point{X: x / lb.scale, Y: y / lb.scale}
}

// SCRFD is a face detector backed by an SCRFD ONNX model. It reports the five
// landmarks, so every face it returns carries a measured mouth position.
type SCRFD struct {
	session       *inference.Session
	inputSize     int
	confThreshold float32
	nmsThreshold  float32
}

// NewSCRFD loads an SCRFD model. inputSize is the square model input side and
// must be a multiple of the largest stride.
func NewSCRFD(modelPath string, inputSize int, confThreshold, nmsThreshold float32) (*SCRFD, error) {
	if inputSize <= 0 || inputSize%scrfdStrides[len(scrfdStrides)-1] != 0 {
		return nil, fmt.Errorf("invalid SCRFD input size %d", inputSize)
	}

	var outputNames []string
	for _, head := range scrfdHead {
		for _, stride := range scrfdStrides {
			outputNames = append(outputNames, fmt.Sprintf("%s_%d", head.name, stride))
		}
	}

	session, err := inference.NewSession(modelPath, []string{"input.1"}, outputNames)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCRFD session: %w", err)
	}

	return &SCRFD{
		session:       session,
		inputSize:     inputSize,
		confThreshold: confThreshold,
		nmsThreshold:  nmsThreshold,
	}, nil
}

// Detect finds faces in a BGR frame. Boxes and landmarks are in frame pixels.
func (s *SCRFD) Detect(img gocv.Mat) ([]Face, error) {
	blob, lb, err := s.letterbox(img)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	input, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(s.inputSize), int64(s.inputSize)),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	// Outputs are ordered head-major: all scores, then all boxes, then all keypoints.
	tensors := make([]*ort.Tensor[float32], 0, len(scrfdHead)*len(scrfdStrides))
	defer func() { destroyTensors(tensors) }()
	for _, head := range scrfdHead {
		for _, stride := range scrfdStrides {
			t, err := inference.CreateEmptyTensor[float32]([]int64{int64(s.anchorCount(stride)), head.width})
			if err != nil {
				return nil, fmt.Errorf("failed to create %s_%d tensor: %w", head.name, stride, err)
			}
			tensors = append(tensors, t)
		}
	}

	values := make([]ort.Value, len(tensors))
	for i, t := range tensors {
		values[i] = t
	}
	if err := s.session.Run([]ort.Value{input}, values); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	var faces []Face
	n := len(scrfdStrides)
	for level, stride := range scrfdStrides {
		out := levelOutputs{
			scores: tensors[level].GetData(),
			boxes:  tensors[level+n].GetData(),
			kps:    tensors[level+2*n].GetData(),
		}
		faces = append(faces, decodeLevel(out, stride, s.inputSize/stride, s.confThreshold, lb)...)
	}

	return nms(faces, s.nmsThreshold), nil
}

func (s *SCRFD) anchorCount(stride int) int {
	grid := s.inputSize / stride
	return grid * grid * scrfdAnchors
}

// decodeLevel turns the raw outputs of one pyramid level into faces. grid is
// the side of the square feature map; anchors are laid out row-major with
// scrfdAnchors entries per cell. Faces are clamped to the original frame.
func decodeLevel(out levelOutputs, stride, grid int, threshold float32, lb letterbox) []Face {
	var faces []Face
	step := float32(stride)

	for i, logit := range out.scores {
		score := sigmoid(logit)
		if score <= threshold {
			continue
		}

		cell := i / scrfdAnchors
		if cell >= grid*grid || len(out.boxes) < (i+1)*4 || len(out.kps) < (i+1)*2*scrfdLandmarks {
			break
		}
		cx := (float32(cell%grid) + 0.5) * step
		cy := (float32(cell/grid) + 0.5) * step

		d := out.boxes[i*4 : i*4+4]
		topLeft := lb.toFrame(cx-d[0]*step, cy-d[1]*step)
		bottomRight := lb.toFrame(cx+d[2]*step, cy+d[3]*step)

		var pts [scrfdLandmarks]Point
		k := out.kps[i*2*scrfdLandmarks:]
		for j := range pts {
			pts[j] = lb.toFrame(cx+k[2*j]*step, cy+k[2*j+1]*step)
		}

		faces = append(faces, Face{
			BoundingBox: clampBox(BoundingBox{
				X1: topLeft.X, Y1: topLeft.Y,
				X2: bottomRight.X, Y2: bottomRight.Y,
			}, lb.frame.X, lb.frame.Y),
			Landmarks: Landmarks{
				LeftEye:    pts[0],
				RightEye:   pts[1],
				Nose:       pts[2],
				LeftMouth:  pts[3],
				RightMouth: pts[4],
			},
			HasMouth: true,
			Score:    score,
		})
	}

	return faces
}

// letterbox fits the frame into the top-left of a black square of the model
// input size and returns it as a normalized NCHW RGB blob.
func (s *SCRFD) letterbox(img gocv.Mat) (gocv.Mat, letterbox, error) {
	lb := letterbox{frame: image.Pt(img.Cols(), img.Rows())}
	if lb.frame.X == 0 || lb.frame.Y == 0 {
		return gocv.Mat{}, lb, fmt.Errorf("empty frame")
	}
	lb.scale = float32(s.inputSize) / float32(max(lb.frame.X, lb.frame.Y))
	fit := image.Pt(int(float32(lb.frame.X)*lb.scale), int(float32(lb.frame.Y)*lb.scale))

	resized := gocv.NewMat()
	defer resized.Close()
	if err := gocv.Resize(img, &resized, fit, 0, 0, gocv.InterpolationLinear); err != nil {
		return gocv.Mat{}, lb, fmt.Errorf("failed to resize frame: %w", err)
	}

	square := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), s.inputSize, s.inputSize, gocv.MatTypeCV8UC3)
	defer square.Close()
	roi := square.Region(image.Rectangle{Max: fit})
	err := resized.CopyTo(&roi)
	roi.Close()
	if err != nil {
		return gocv.Mat{}, lb, fmt.Errorf("failed to letterbox frame: %w", err)
	}

	// (x - 127.5) / 128 per channel, BGR to RGB, HWC to NCHW
	blob := gocv.BlobFromImage(square, 1.0/128.0, image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	return blob, lb, nil
}

// Close releases the ONNX session
func (s *SCRFD) Close() error {
	return s.session.Destroy()
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}

func destroyTensors(tensors []*ort.Tensor[float32]) {
	for _, t := range tensors {
		if t != nil {
			t.Destroy()
		}
	}
}

func bytesToFloat32(data []byte) []float32 {
	result := make([]float32, len(data)/4)
	for i := range result {
		result[i] = math.Float32frombits(uint32(data[i*4]) | uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24)
	}
	return result
}
