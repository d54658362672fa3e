package service

import (
	"context"
	"strings"
	"time"

	"github.com/facewarden/server/internal/attend/store"
)

type KioskRegistry struct {
	store store.KioskStore
}

func NewKioskRegistry(st store.KioskStore) *KioskRegistry {
	return &KioskRegistry{store: st}
}

func (r *KioskRegistry) IsKnown(ctx context.Context, kioskID string) (bool, error) {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return false, nil
	}
	return r.store.IsKnown(ctx, kioskID)
}

func (r *KioskRegistry) NoteSeen(ctx context.Context, kioskID string) error {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return nil
	}
	return r.store.MarkSeen(ctx, kioskID, time.Now().UTC())
}
