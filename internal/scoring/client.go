// Package scoring talks to the remote essay scoring service. The service owns
// the models; this package only sends the essay and hands back the raw,
// order-preserving per-model payloads.
package scoring

import (
	"context"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

//go:generate go tool mockgen -source=client.go -destination=mock_client.go -package=scoring

// Client is the interface for requesting assessments of one essay.
type Client interface {
	// Predict scores req.Essay with every model in req.Models. A returned
	// error means the whole call failed; per-model errors live in the payloads.
	Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error)
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Essay  string           `json:"essay"`
	Models []models.ModelID `json:"models"`
}

// PredictResponse is the decoded /predict envelope. Results keeps the key
// order of the response body.
type PredictResponse struct {
	Results *models.RawResults `json:"results"`
}
