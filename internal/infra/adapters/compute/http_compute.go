package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ComputeAdapter = (*HTTPComputeAdapter)(nil)

// HTTPComputeAdapter calls the compute backend over HTTP. One route per job
// type; authentication is a static API key header plus the acting user's id.
type HTTPComputeAdapter struct {
	base   string
	apiKey string
	client *http.Client
}

func NewHTTPComputeAdapter(base, apiKey string, client *http.Client) (*HTTPComputeAdapter, error) {
	if base == "" {
		return nil, errors.New("compute base url empty")
	}
	if client == nil {
		// Per-call deadlines come from the caller's context.
		client = &http.Client{}
	}
	return &HTTPComputeAdapter{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		client: client,
	}, nil
}

func routeFor(jobType model.JobType) (string, error) {
	switch jobType {
	case model.JobTypeProductSearch:
		return "/catalog-product-search", nil
	case model.JobTypeAutoSelect:
		return "/auto-select", nil
	case model.JobTypeImageGeneration:
		return "/generate-image", nil
	default:
		return "", fmt.Errorf("no compute route for job type %q", jobType)
	}
}

func (a *HTTPComputeAdapter) Run(ctx context.Context, jobType model.JobType, payload *model.JobPayload) (*model.JobResult, error) {
	route, err := routeFor(jobType)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+route, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", a.apiKey)
	req.Header.Set("X-User-ID", payload.UserID)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("compute http %d on %s", resp.StatusCode, route)
	}

	var result model.JobResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, fmt.Errorf("compute returned status %q", result.Status)
	}
	return &result, nil
}
