package compute

import (
	"context"
	"encoding/json"
	"time"

	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/adapter"
)

var _ adapter.ComputeAdapter = (*NoopComputeAdapter)(nil)

// NoopComputeAdapter implements adapter.ComputeAdapter for local/dev runs.
// It returns canned results instead of calling the real compute backend.
type NoopComputeAdapter struct {
	Delay time.Duration
}

func NewNoopComputeAdapter() *NoopComputeAdapter {
	return &NoopComputeAdapter{Delay: 100 * time.Millisecond}
}

func (a *NoopComputeAdapter) Run(ctx context.Context, jobType model.JobType, payload *model.JobPayload) (*model.JobResult, error) {
	select {
	case <-time.After(a.Delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var data interface{}
	switch jobType {
	case model.JobTypeProductSearch:
		data = map[string]interface{}{
			"recommendations": []model.ProductCategory{
				{
					Category: "sofa",
					Reason:   "fits the requested theme",
					Products: []model.Product{
						{ID: "noop-sofa-1", Title: "Noop Sofa", ImageURL: "https://example.invalid/sofa.jpg"},
					},
				},
			},
		}
	case model.JobTypeAutoSelect:
		data = []map[string]string{{"id": "noop-sofa-1"}}
	case model.JobTypeImageGeneration:
		data = map[string]interface{}{
			"generated_image_url": "https://example.invalid/generated.png",
			"coordinates": []map[string]interface{}{
				{"id": "noop-sofa-1", "box_2d": map[string]float64{"x": 0.1, "y": 0.2, "width": 0.3, "height": 0.4}},
			},
		}
	default:
		data = map[string]interface{}{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &model.JobResult{Status: "success", ResponseData: raw}, nil
}
