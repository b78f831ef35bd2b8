package batch

import "fmt"

// NewOnnxBatchedModel builds n pre-warmed OnnxInstance sessions over
// modelPath and wraps them in a BatchedModel, following
// brensch-snek2/executor/inference.NewOnnxClientPoolWithConfig's
// construct-then-fan-out shape.
func NewOnnxBatchedModel(modelPath string, n int, onnxCfg OnnxConfig, cfg Config) (*BatchedModel, error) {
	if n <= 0 {
		n = 1
	}
	instances := make([]Model, 0, n)
	for i := 0; i < n; i++ {
		inst, err := NewOnnxInstance(modelPath, onnxCfg)
		if err != nil {
			for _, created := range instances {
				_ = created.Close()
			}
			return nil, fmt.Errorf("batch: create onnx instance %d/%d: %w", i+1, n, err)
		}
		instances = append(instances, inst)
	}
	return New(instances, cfg)
}
