package service

import (
	"context"
	"crypto/subtle"
)

// Decision is the enumerated outcome of an authorization check.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionAllow
)

// AuthzPolicy decides whether a presented API key may use administrative
// endpoints (attendance listing, deletion, enrollment, verification).
type AuthzPolicy interface {
	Authorize(ctx context.Context, key string) Decision
}

// APIKeyPolicy allows callers presenting the configured key.  An empty
// configured key denies everything — deployments without a key should use
// AllowAllPolicy deliberately instead of an accidentally open APIKeyPolicy.
type APIKeyPolicy struct {
	Key string
}

func (p APIKeyPolicy) Authorize(_ context.Context, key string) Decision {
	if p.Key == "" {
		return DecisionDeny
	}
	if subtle.ConstantTimeCompare([]byte(p.Key), []byte(key)) == 1 {
		return DecisionAllow
	}
	return DecisionDeny
}

// AllowAllPolicy admits every caller.  Dev environments only.
type AllowAllPolicy struct{}

func (AllowAllPolicy) Authorize(context.Context, string) Decision {
	return DecisionAllow
}
