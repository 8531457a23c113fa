package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/aretw0/routine/pkg/domain"
)

// JSONHandler implements the ReportHandler interface as JSON Lines:
// one object per tick, then one summary object.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON output (default: stdout).
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

type jsonLine struct {
	Type    string             `json:"type"`
	Report  *domain.TickReport `json:"report,omitempty"`
	Summary *Summary           `json:"summary,omitempty"`
}

func (h *JSONHandler) Report(ctx context.Context, rep *domain.TickReport) error {
	return h.Encoder.Encode(jsonLine{Type: "tick", Report: rep})
}

func (h *JSONHandler) Finish(ctx context.Context, sum Summary) error {
	return h.Encoder.Encode(jsonLine{Type: "summary", Summary: &sum})
}
