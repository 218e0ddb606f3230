package yolo

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTensor lays out candidate columns in the [1, 4+nc, n] order the model
// emits: all x values, then all y, w, h, then per-class score rows.
func buildTensor(rows, cols int, columns [][]float32) []float32 {
	data := make([]float32, rows*cols)
	for c, col := range columns {
		for r, v := range col {
			data[r*cols+c] = v
		}
	}
	return data
}

func TestDecodeOutput_ThresholdFilter(t *testing.T) {
	// Two classes, three candidates: strong class 0, weak class 1, borderline.
	rows, cols := 6, 3
	data := buildTensor(rows, cols, [][]float32{
		{100, 100, 20, 20, 0.9, 0.1},
		{200, 200, 30, 30, 0.05, 0.1},
		{300, 300, 10, 10, 0.0, 0.3},
	})

	boxes := decodeOutput(data, rows, cols, 0.3)

	require.Len(t, boxes, 2)

	require.Equal(t, 100.0, boxes[0].X)
	require.Equal(t, 0, boxes[0].ClassID)
	require.Equal(t, "comedone", boxes[0].Class)
	require.InDelta(t, 0.9, boxes[0].Confidence, 1e-6)

	require.Equal(t, 300.0, boxes[1].X)
	require.Equal(t, 1, boxes[1].ClassID)
	require.Equal(t, "papule", boxes[1].Class)
}

func TestDecodeOutput_PicksBestClass(t *testing.T) {
	rows, cols := 10, 1
	data := buildTensor(rows, cols, [][]float32{
		{50, 60, 8, 8, 0.1, 0.2, 0.15, 0.7, 0.05, 0.1},
	})

	boxes := decodeOutput(data, rows, cols, 0.3)

	require.Len(t, boxes, 1)
	require.Equal(t, 3, boxes[0].ClassID)
	require.Equal(t, "nodule", boxes[0].Class)
	require.InDelta(t, 0.7, boxes[0].Confidence, 1e-6)
}

func TestDecodeOutput_MalformedTensor(t *testing.T) {
	require.Nil(t, decodeOutput([]float32{1, 2, 3}, 4, 1, 0.3))
	require.Nil(t, decodeOutput([]float32{1, 2}, 6, 2, 0.3))
}

func TestSuppressOverlaps(t *testing.T) {
	// Two near-identical boxes over one lesion plus a distant third.
	candidates := []Box{
		{X: 100, Y: 100, Width: 40, Height: 40, Confidence: 0.6},
		{X: 102, Y: 101, Width: 40, Height: 40, Confidence: 0.9},
		{X: 400, Y: 400, Width: 30, Height: 30, Confidence: 0.5},
	}

	kept := suppressOverlaps(candidates)

	require.Len(t, kept, 2)
	require.InDelta(t, 0.9, kept[0].Confidence, 1e-6)
	require.Equal(t, 400.0, kept[1].X)
}

func TestSuppressOverlaps_KeepsDisjointBoxes(t *testing.T) {
	candidates := []Box{
		{X: 10, Y: 10, Width: 10, Height: 10, Confidence: 0.4},
		{X: 50, Y: 50, Width: 10, Height: 10, Confidence: 0.8},
	}

	kept := suppressOverlaps(candidates)
	require.Len(t, kept, 2)
}

func TestResolveModelFile_FallsBackWhenWeightsMissing(t *testing.T) {
	dir := t.TempDir()

	path, name := resolveModelFile(dir, defaultModelName)
	require.Equal(t, filepath.Join(dir, fallbackModelFile), path)
	require.Equal(t, fallbackModelName, name)

	fineTuned := filepath.Join(dir, modelFiles[defaultModelName])
	require.NoError(t, os.WriteFile(fineTuned, []byte("weights"), 0o644))

	path, name = resolveModelFile(dir, defaultModelName)
	require.Equal(t, fineTuned, path)
	require.Equal(t, defaultModelName, name)
}

func TestModelName_ConcurrentWithFallbackResolution(t *testing.T) {
	d := New().(*detector)
	d.modelsDir = t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.ModelName()
			}
		}()
	}

	// The load fails (no weight files at all) but still resolves the
	// fallback name under the same lock the readers take.
	_ = d.EnsureLoaded()
	wg.Wait()

	require.Equal(t, fallbackModelName, d.ModelName())
}

func TestMapClassID(t *testing.T) {
	require.Equal(t, "comedone", mapClassID(0))
	require.Equal(t, "non-inflammatory", mapClassID(5))
	require.Equal(t, "inflammatory", mapClassID(99))
	require.Equal(t, "inflammatory", mapClassID(-1))
}

func TestIou(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 10, Height: 10}
	require.InDelta(t, 1.0, iou(a, a), 1e-9)

	b := Box{X: 100, Y: 100, Width: 10, Height: 10}
	require.Zero(t, iou(a, b))
}
