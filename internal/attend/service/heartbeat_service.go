package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/facewarden/server/internal/attend/store"
	"github.com/facewarden/server/internal/attend/types"
)

var (
	ErrInvalidKioskID = errors.New("kiosk_id is required")
)

type HeartbeatService struct {
	heartbeatStore store.HeartbeatStore
	registry       *KioskRegistry
}

func NewHeartbeatService(hs store.HeartbeatStore, reg *KioskRegistry) *HeartbeatService {
	return &HeartbeatService{heartbeatStore: hs, registry: reg}
}

func (s *HeartbeatService) Record(ctx context.Context, req types.HeartbeatRequest) (types.HeartbeatResponse, error) {
	kioskID := strings.TrimSpace(req.KioskID)
	if kioskID == "" {
		return types.HeartbeatResponse{}, ErrInvalidKioskID
	}

	known, err := s.registry.IsKnown(ctx, kioskID)
	if err != nil {
		return types.HeartbeatResponse{}, err
	}
	_ = s.registry.NoteSeen(ctx, kioskID)

	rec := store.HeartbeatRecord{
		ReceivedAt: time.Now().UTC(),
		Request:    req,
	}

	if err := s.heartbeatStore.UpsertHeartbeat(ctx, kioskID, rec); err != nil {
		return types.HeartbeatResponse{}, err
	}

	return types.HeartbeatResponse{
		OK:         true,
		Known:      known,
		KioskID:    kioskID,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}
