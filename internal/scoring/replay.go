package scoring

import (
	"context"
	"fmt"
	"os"
)

// ReplayClient answers every Predict with a recorded /predict response body.
// It lets the dashboard and the CLI run without the inference service.
type ReplayClient struct {
	body []byte
}

// NewReplayClient creates a client that replays body.
func NewReplayClient(body []byte) *ReplayClient {
	return &ReplayClient{body: body}
}

// LoadReplayClient reads a recorded response from path.
func LoadReplayClient(path string) (*ReplayClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay file: %w", err)
	}
	return NewReplayClient(data), nil
}

// Predict returns the recorded response; the request is ignored.
func (r *ReplayClient) Predict(ctx context.Context, _ *PredictRequest) (*PredictResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return DecodeResponse(r.body)
}
