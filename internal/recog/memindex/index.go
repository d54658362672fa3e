// Package memindex is an in-process implementation of the vector search
// capability: labeled embeddings with cosine-similarity nearest-neighbor
// lookup.  The identity set is small enough that a linear scan suffices.
package memindex

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/facewarden/server/internal/recog"
)

var ErrEmptyEmbedding = errors.New("embedding must not be empty")

type point struct {
	id     string
	label  string
	vector []float32 // unit-normalized at insert
}

type Index struct {
	mu     sync.RWMutex
	points []point
}

func New() *Index {
	return &Index{}
}

// Add stores an embedding under the given label.  Multiple embeddings per
// label are expected (several enrollment shots per person).
func (ix *Index) Add(_ context.Context, label string, embedding []float32) error {
	if len(embedding) == 0 {
		return ErrEmptyEmbedding
	}

	v := normalize(embedding)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.points = append(ix.points, point{
		id:     uuid.NewString(),
		label:  label,
		vector: v,
	})
	return nil
}

// Nearest returns the closest stored embedding by cosine similarity.
// ok=false when the index is empty.  No thresholding here — acceptance
// policy belongs to the caller.
func (ix *Index) Nearest(_ context.Context, embedding []float32) (recog.Match, bool, error) {
	if len(embedding) == 0 {
		return recog.Match{}, false, ErrEmptyEmbedding
	}

	q := normalize(embedding)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	best := recog.Match{Score: math.Inf(-1)}
	found := false
	for _, p := range ix.points {
		if len(p.vector) != len(q) {
			continue
		}
		score := dot(p.vector, q)
		if score > best.Score {
			best = recog.Match{Label: p.label, Score: score}
			found = true
		}
	}

	if !found {
		return recog.Match{}, false, nil
	}
	return best, true, nil
}

// Len returns the number of stored points.  Test-only helper.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.points)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := math.Sqrt(sum)
	if n == 0 {
		return append([]float32(nil), v...)
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
