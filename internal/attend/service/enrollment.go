package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/recog"
)

var (
	ErrInvalidEnrollName = errors.New("name is required")
	ErrNoEmbeddings      = errors.New("at least one embedding is required")
)

// Enrollment registers people: their embeddings go into the vector index
// under the display-name label, and a durable identity row (encrypted name)
// is created if one does not already exist.
type Enrollment struct {
	index    recog.Index
	resolver *IdentityResolver
	logger   *log.Logger
}

func NewEnrollment(index recog.Index, resolver *IdentityResolver, logger *log.Logger) *Enrollment {
	return &Enrollment{index: index, resolver: resolver, logger: logger}
}

// Enroll indexes the given embeddings under name and returns the identity
// they resolve to, plus how many embeddings were indexed.
func (s *Enrollment) Enroll(ctx context.Context, name string, embeddings [][]float32) (store.Identity, int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Identity{}, 0, ErrInvalidEnrollName
	}
	if len(embeddings) == 0 {
		return store.Identity{}, 0, ErrNoEmbeddings
	}

	indexed := 0
	for _, emb := range embeddings {
		if len(emb) == 0 {
			continue
		}
		if err := s.index.Add(ctx, name, emb); err != nil {
			return store.Identity{}, indexed, err
		}
		indexed++
	}
	if indexed == 0 {
		return store.Identity{}, 0, ErrNoEmbeddings
	}

	identity, err := s.resolver.ResolveLabel(ctx, name)
	if err != nil {
		return store.Identity{}, indexed, err
	}

	s.logger.Printf("enrolled %q with %d embeddings (identity=%d)", name, indexed, identity.ID)
	return identity, indexed, nil
}
