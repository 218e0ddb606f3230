// Package yolo runs the acne-lesion object detector through TensorFlow Lite.
package yolo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/cpuid/v2"
	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"

	"dermasnap/pkg/backend"
	"dermasnap/pkg/imaging"
)

// DefaultConfidence is the detection threshold applied when the caller does
// not supply one.
const DefaultConfidence = 0.3

const (
	defaultModelName    = "yolov8-nano"
	fallbackModelName   = "yolov8n-pretrained"
	fallbackModelFile   = "yolov8n.tflite"
	maxDetectionOverlap = 0.45
)

// modelFiles maps the supported model names to their weight artifacts under
// the models directory.
var modelFiles = map[string]string{
	"yolov8-nano":  "yolov8n-acne.tflite",
	"yolov11-nano": "yolov11n-acne.tflite",
}

// classNames is the fixed class-id lookup for the fine-tuned lesion models.
// Unknown ids map to "inflammatory" rather than failing.
var classNames = map[int]string{
	0: "comedone",
	1: "papule",
	2: "pustule",
	3: "nodule",
	4: "inflammatory",
	5: "non-inflammatory",
}

// Box is one detection in raster-space center format.
type Box struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"classId"`
	Class      string  `json:"class"`
	Model      string  `json:"model"`
}

type IDetector interface {
	EnsureLoaded() error
	IsReady() bool
	ModelName() string
	Detect(raster *imaging.Raster, confidence float64) ([]Box, error)
}

type detector struct {
	handle    backend.Handle
	modelsDir string
	modelName string

	mu          sync.Mutex
	interpreter *tflite.Interpreter
	inputW      int
	inputH      int
}

// New builds the detector without touching the weight files; the first
// EnsureLoaded performs the one-time interpreter setup.
func New() IDetector {
	modelsDir := os.Getenv("YOLO_MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "models"
	}

	modelName := os.Getenv("YOLO_MODEL_NAME")
	if _, ok := modelFiles[modelName]; !ok {
		modelName = defaultModelName
	}

	return &detector{
		modelsDir: modelsDir,
		modelName: modelName,
	}
}

// EnsureLoaded loads the named lesion model once. A missing weight artifact
// is not an error: the generic pretrained checkpoint is used instead and the
// reported model name changes accordingly. Interpreter construction failures
// are sticky.
func (d *detector) EnsureLoaded() error {
	return d.handle.Ensure(func() error {
		modelPath, effectiveName := resolveModelFile(d.modelsDir, d.modelName)

		// ModelName may be called concurrently with the first load.
		d.mu.Lock()
		d.modelName = effectiveName
		d.mu.Unlock()

		modelData, err := os.ReadFile(modelPath)
		if err != nil {
			return fmt.Errorf("read model weights: %w", err)
		}

		model := tflite.NewModel(modelData)
		if model == nil {
			return errors.New("cannot load TensorFlow Lite model")
		}

		threads := cpuid.CPU.PhysicalCores
		if threads < 1 {
			threads = 1
		}

		options := tflite.NewInterpreterOptions()
		options.SetNumThread(threads)
		options.AddDelegate(xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(threads)}))

		interpreter := tflite.NewInterpreter(model, options)
		if interpreter == nil {
			return errors.New("cannot create TensorFlow Lite interpreter")
		}

		if status := interpreter.AllocateTensors(); status != tflite.OK {
			interpreter.Delete()
			return errors.New("cannot allocate tensors")
		}

		input := interpreter.GetInputTensor(0)
		d.inputH = input.Dim(1)
		d.inputW = input.Dim(2)
		d.interpreter = interpreter

		return nil
	})
}

func (d *detector) IsReady() bool {
	return d.handle.Ready()
}

func (d *detector) ModelName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modelName
}

// resolveModelFile picks the weight artifact for the named model, falling
// back to the generic pretrained checkpoint when the fine-tuned file is
// absent. The returned name reflects what will actually be loaded.
func resolveModelFile(modelsDir, modelName string) (string, string) {
	path := filepath.Join(modelsDir, modelFiles[modelName])
	if _, err := os.Stat(path); err != nil {
		return filepath.Join(modelsDir, fallbackModelFile), fallbackModelName
	}
	return path, modelName
}

// Detect runs the model on the raster and returns center-format boxes scaled
// back to raster space. Candidates below the confidence threshold are
// dropped here, inside the backend, never by the caller.
func (d *detector) Detect(raster *imaging.Raster, confidence float64) ([]Box, error) {
	if err := d.EnsureLoaded(); err != nil {
		return nil, err
	}
	if confidence <= 0 {
		confidence = DefaultConfidence
	}

	scaled := imaging.Resize(raster, d.inputW, d.inputH)

	// The interpreter reuses its tensors between invocations.
	d.mu.Lock()
	defer d.mu.Unlock()

	input := d.interpreter.GetInputTensor(0).Float32s()
	for i, v := range scaled.Pix {
		input[i] = float32(v) / 255.0
	}

	if status := d.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.New("tensor invoke failed")
	}

	output := d.interpreter.GetOutputTensor(0)
	candidates := decodeOutput(output.Float32s(), output.Dim(1), output.Dim(2), confidence)
	boxes := suppressOverlaps(candidates)

	// Scale from model input space back to the caller's raster.
	sx := float64(raster.Width) / float64(d.inputW)
	sy := float64(raster.Height) / float64(d.inputH)
	for i := range boxes {
		boxes[i].X *= sx
		boxes[i].Y *= sy
		boxes[i].Width *= sx
		boxes[i].Height *= sy
		boxes[i].Model = d.modelName
	}

	return boxes, nil
}

// decodeOutput parses a YOLOv8-style [1, 4+nc, n] prediction tensor: four
// center-format coordinates followed by one score per class, column per
// candidate.
func decodeOutput(data []float32, rows, cols int, confidence float64) []Box {
	numClasses := rows - 4
	if numClasses < 1 || len(data) < rows*cols {
		return nil
	}

	var boxes []Box
	for c := 0; c < cols; c++ {
		bestScore := float32(0)
		bestClass := 0
		for cls := 0; cls < numClasses; cls++ {
			if score := data[(4+cls)*cols+c]; score > bestScore {
				bestScore = score
				bestClass = cls
			}
		}
		if float64(bestScore) < confidence {
			continue
		}

		boxes = append(boxes, Box{
			X:          float64(data[0*cols+c]),
			Y:          float64(data[1*cols+c]),
			Width:      float64(data[2*cols+c]),
			Height:     float64(data[3*cols+c]),
			Confidence: float64(bestScore),
			ClassID:    bestClass,
			Class:      mapClassID(bestClass),
		})
	}

	return boxes
}

// suppressOverlaps is a greedy IoU suppression pass; the raw tensor contains
// one candidate per anchor, so duplicates over the same lesion are expected.
func suppressOverlaps(candidates []Box) []Box {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := make([]Box, 0, len(candidates))
	for _, cand := range candidates {
		overlapping := false
		for _, k := range kept {
			if iou(cand, k) > maxDetectionOverlap {
				overlapping = true
				break
			}
		}
		if !overlapping {
			kept = append(kept, cand)
		}
	}

	return kept
}

func iou(a, b Box) float64 {
	ax1, ay1, ax2, ay2 := a.X-a.Width/2, a.Y-a.Height/2, a.X+a.Width/2, a.Y+a.Height/2
	bx1, by1, bx2, by2 := b.X-b.Width/2, b.Y-b.Height/2, b.X+b.Width/2, b.Y+b.Height/2

	ix := min(ax2, bx2) - max(ax1, bx1)
	iy := min(ay2, by2) - max(ay1, by1)
	if ix <= 0 || iy <= 0 {
		return 0
	}

	inter := ix * iy
	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func mapClassID(classID int) string {
	if name, ok := classNames[classID]; ok {
		return name
	}
	return "inflammatory"
}
