package ocr

import (
	"context"
	"fmt"

	"finehero/models"
	"finehero/utils"

	"go.uber.org/zap"
)

// Pipeline walks the engine tiers in order until one produces text that
// passes the quality gate.
type Pipeline struct {
	engines     []Engine
	qualityGate float64
}

// NewPipeline assembles the tiered extraction chain. Engines are tried in the
// order given.
func NewPipeline(qualityGate float64, engines ...Engine) *Pipeline {
	if qualityGate <= 0 {
		qualityGate = 0.55
	}
	return &Pipeline{engines: engines, qualityGate: qualityGate}
}

// Extract runs the first engine that can handle the MIME type; if its result
// fails the quality gate, the next capable engine is tried. The best-scoring
// result wins when no tier passes the gate outright.
func (p *Pipeline) Extract(ctx context.Context, path, mimeType string) (*models.OCRResult, error) {
	logger := utils.GetLogger()

	var best *models.OCRResult
	var lastErr error
	tried := 0

	for _, engine := range p.engines {
		if !engine.CanHandle(mimeType) {
			continue
		}
		tried++

		result, err := engine.Extract(ctx, path)
		if err != nil {
			logger.Warn("ocr: engine failed, trying next tier",
				zap.String("engine", engine.Name()), zap.Error(err))
			lastErr = err
			continue
		}

		logger.Debug("ocr: engine result",
			zap.String("engine", engine.Name()),
			zap.Float64("score", result.Score),
			zap.Int64("durationMs", result.DurationMS))

		if result.Score >= p.qualityGate {
			return result, nil
		}
		if best == nil || result.Score > best.Score {
			best = result
		}
	}

	if tried == 0 {
		return nil, fmt.Errorf("ocr: no engine accepts mime type %q", mimeType)
	}
	if best == nil {
		return nil, fmt.Errorf("ocr: all engines failed: %w", lastErr)
	}
	if best.Score == 0 {
		return nil, fmt.Errorf("ocr: no usable text recognized (best engine %s)", best.Engine)
	}
	return best, nil
}
