package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment loads the shared onnxruntime library once per process.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if !ort.IsInitialized() {
			envErr = ort.InitializeEnvironment()
		}
	})
	return envErr
}

// ortRunner owns a session with preallocated input and output tensors.
// Tensors are reused, so runs are serialized.
type ortRunner struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newORTRunner(cfg Config) (*ortRunner, error) {
	size := int64(cfg.ImageSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.Dimensions)))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &ortRunner{session: session, input: input, output: output}, nil
}

func (r *ortRunner) Run(pixels []float32) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.input.GetData(), pixels)
	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	data := r.output.GetData()
	out := make([]float32, len(data))
	copy(out, data)
	return out, nil
}

func (r *ortRunner) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, destroy := range []func() error{r.session.Destroy, r.input.Destroy, r.output.Destroy} {
		if err := destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
