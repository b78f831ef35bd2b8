package batch

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortInitOnce sync.Once
var ortInitErr error

// OnnxConfig names the fixed tensor shapes a wallwars policy/value network
// expects: a flat per-position feature vector and a flat per-position
// policy output, both encoded over the padded model grid (internal/padding)
// so one network serves every game board size.
type OnnxConfig struct {
	InputFeatures int
	PolicySize    int
	SharedLibPath string
}

// OnnxInstance is one pre-warmed ONNX Runtime session implementing Model.
// Grounded on internal/engine/nneval.go's provider-fallback session setup
// (try TensorRT, then CUDA, then DirectML, then CPU) and
// brensch-snek2/executor/inference/onnx.go's dynamic per-batch tensor
// allocation, adopted here in place of fixed max-batch-size preallocated
// tensors since request batches here vary in size down to 1.
type OnnxInstance struct {
	session *ort.DynamicAdvancedSession
	cfg     OnnxConfig
}

// NewOnnxInstance loads modelPath into a new session, trying execution
// providers in order of preference and falling back to CPU.
func NewOnnxInstance(modelPath string, cfg OnnxConfig) (*OnnxInstance, error) {
	ortInitOnce.Do(func() {
		if cfg.SharedLibPath != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("batch: initialize onnxruntime: %w", ortInitErr)
	}

	inputNames := []string{"input"}
	outputNames := []string{"policy", "value"}

	type provider struct {
		name  string
		setup func(*ort.SessionOptions) error
	}
	providers := []provider{
		{"CUDA", func(so *ort.SessionOptions) error {
			opts, err := ort.NewCUDAProviderOptions()
			if err != nil {
				return err
			}
			defer opts.Destroy()
			return so.AppendExecutionProviderCUDA(opts)
		}},
		{"CPU", func(*ort.SessionOptions) error { return nil }},
	}

	var session *ort.DynamicAdvancedSession
	var lastErr error
	for _, p := range providers {
		so, err := ort.NewSessionOptions()
		if err != nil {
			lastErr = err
			continue
		}
		if err := p.setup(so); err != nil {
			so.Destroy()
			lastErr = fmt.Errorf("%s: %w", p.name, err)
			continue
		}
		s, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, so)
		so.Destroy()
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", p.name, err)
			continue
		}
		session = s
		break
	}
	if session == nil {
		return nil, fmt.Errorf("batch: no execution provider initialized: %w", lastErr)
	}

	return &OnnxInstance{session: session, cfg: cfg}, nil
}

// Run implements Model.
func (o *OnnxInstance) Run(inputs [][]float32) ([]Output, error) {
	batchSize := int64(len(inputs))
	flat := make([]float32, 0, int(batchSize)*o.cfg.InputFeatures)
	for _, in := range inputs {
		flat = append(flat, in...)
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(batchSize, int64(o.cfg.InputFeatures)), flat)
	if err != nil {
		return nil, fmt.Errorf("batch: build input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	policyTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(batchSize, int64(o.cfg.PolicySize)))
	if err != nil {
		return nil, fmt.Errorf("batch: allocate policy tensor: %w", err)
	}
	defer policyTensor.Destroy()

	valueTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(batchSize, 1))
	if err != nil {
		return nil, fmt.Errorf("batch: allocate value tensor: %w", err)
	}
	defer valueTensor.Destroy()

	if err := o.session.Run([]ort.Value{inputTensor}, []ort.Value{policyTensor, valueTensor}); err != nil {
		return nil, fmt.Errorf("batch: session run: %w", err)
	}

	policyData := policyTensor.GetData()
	valueData := valueTensor.GetData()

	outputs := make([]Output, batchSize)
	for i := int64(0); i < batchSize; i++ {
		priors := make([]float64, o.cfg.PolicySize)
		for j := 0; j < o.cfg.PolicySize; j++ {
			priors[j] = float64(policyData[i*int64(o.cfg.PolicySize)+int64(j)])
		}
		outputs[i] = Output{
			Value:  float64(valueData[i]),
			Priors: priors,
		}
	}
	return outputs, nil
}

// Close implements Model.
func (o *OnnxInstance) Close() error {
	return o.session.Destroy()
}
