package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/recog"
	"github.com/facewarden/server/internal/vault"
)

var (
	// ErrNoMatch means no neighbor was found above the acceptance
	// threshold.  A denial outcome, not a failure.
	ErrNoMatch = errors.New("no match above threshold")
)

// IdentityResolver turns an embedding into a durable identity: nearest
// neighbor from the vector index, a strict-greater threshold on the
// similarity score, then label-to-identity resolution against the
// encrypted identity table.
type IdentityResolver struct {
	index      recog.Index
	vault      *vault.Vault
	identities store.IdentityStore
	threshold  float64
	logger     *log.Logger
}

func NewIdentityResolver(
	index recog.Index,
	v *vault.Vault,
	identities store.IdentityStore,
	threshold float64,
	logger *log.Logger,
) *IdentityResolver {
	return &IdentityResolver{
		index:      index,
		vault:      v,
		identities: identities,
		threshold:  threshold,
		logger:     logger,
	}
}

// ResolvedIdentity pairs the durable identity with the match that produced
// it.  Label is the cleartext name from the vector index.
type ResolvedIdentity struct {
	Identity store.Identity
	Label    string
	Score    float64
}

// Resolve maps an embedding to an identity, or ErrNoMatch when the nearest
// neighbor is absent or scores at/below the threshold (strictly-greater
// acceptance).
func (r *IdentityResolver) Resolve(ctx context.Context, embedding []float32) (ResolvedIdentity, error) {
	match, ok, err := r.index.Nearest(ctx, embedding)
	if err != nil {
		return ResolvedIdentity{}, err
	}
	if !ok || match.Score <= r.threshold {
		return ResolvedIdentity{}, ErrNoMatch
	}

	identity, err := r.ResolveLabel(ctx, match.Label)
	if err != nil {
		return ResolvedIdentity{}, err
	}

	return ResolvedIdentity{
		Identity: identity,
		Label:    match.Label,
		Score:    match.Score,
	}, nil
}

// ResolveLabel finds the identity whose decrypted display name equals
// label, creating one when absent (label seen in the vector index but not
// yet enrolled in the identity table).
//
// The lookup is a linear decrypt-and-compare scan.  Intentional: the
// identity set is small relative to the embedding search, and keeping
// names encrypted at rest rules out an equality index on the column.
// Rows that fail to decrypt are logged and skipped — one corrupt row must
// not abort resolution for everyone else.
func (r *IdentityResolver) ResolveLabel(ctx context.Context, label string) (store.Identity, error) {
	label = strings.TrimSpace(label)

	all, err := r.identities.All(ctx)
	if err != nil {
		return store.Identity{}, err
	}

	for _, identity := range all {
		name := r.vault.Decrypt(identity.NameCiphertext)
		if name == vault.CorruptionSentinel {
			r.logger.Printf("identity %d: undecryptable name, skipping", identity.ID)
			continue
		}
		if name == label {
			return identity, nil
		}
	}

	ciphertext, err := r.vault.Encrypt(label)
	if err != nil {
		return store.Identity{}, err
	}

	identity, err := r.identities.Insert(ctx, ciphertext, time.Now().UTC())
	if err != nil {
		return store.Identity{}, err
	}
	r.logger.Printf("identity %q not found, created id=%d", label, identity.ID)
	return identity, nil
}
