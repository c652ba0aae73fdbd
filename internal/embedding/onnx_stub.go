//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
)

// ONNXConfig mirrors the cgo build's configuration so callers compile either way.
type ONNXConfig struct {
	ModelPath         string
	SharedLibraryPath string
	OutputName        string
	Dimensions        int
	MaxTokens         int
	Tokenizer         Tokenizer
}

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_ ONNXConfig) (*ONNXEmbedder, error) {
	return nil, fmt.Errorf("%w: ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime", models.ErrConfig)
}

func (e *ONNXEmbedder) Embed(context.Context, string, Options) ([]float32, error) {
	return nil, fmt.Errorf("onnx embedder unavailable")
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Close() error { return nil }
