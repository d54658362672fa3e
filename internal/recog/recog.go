// Package recog defines the external recognition capabilities the engine
// consumes.  The detection/embedding model, the liveness model, and the
// vector index are black boxes behind these interfaces; the engine only
// applies policy to their outputs.
package recog

import (
	"context"
	"errors"
	"strings"
)

// ErrNoFace is returned by an Embedder when no face is found in the image.
// It is a denial outcome upstream, not a failure.
var ErrNoFace = errors.New("no face detected")

// Embedder maps an image to a fixed-length embedding vector.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// Match is a nearest-neighbor hit: the stored label and its similarity
// score against the query vector.
type Match struct {
	Label string
	Score float64
}

// Index is the nearest-neighbor vector search capability.  Nearest returns
// ok=false when the index is empty or no neighbor exists.
type Index interface {
	Nearest(ctx context.Context, embedding []float32) (Match, bool, error)
	Add(ctx context.Context, label string, embedding []float32) error
}

// LivenessResult is the anti-spoofing check outcome.  Unavailable means the
// optional liveness model could not run; policy treats it as a pass
// (fail-open) so the pipeline stays usable without the model.
type LivenessResult int

const (
	LivenessUnavailable LivenessResult = iota
	LivenessReal
	LivenessFake
)

// ParseLivenessResult maps a kiosk-reported string to a LivenessResult.
// Empty or unrecognized values degrade to Unavailable.
func ParseLivenessResult(s string) LivenessResult {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "real":
		return LivenessReal
	case "fake":
		return LivenessFake
	default:
		return LivenessUnavailable
	}
}

func (r LivenessResult) String() string {
	switch r {
	case LivenessReal:
		return "real"
	case LivenessFake:
		return "fake"
	default:
		return "unavailable"
	}
}
