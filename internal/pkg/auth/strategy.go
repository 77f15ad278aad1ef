package auth

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Strategy issues and verifies bearer tokens carrying the caller's identity and role.
type Strategy interface {
	IssueToken(principal model.Principal) (string, error)
	ParseToken(token string) (model.Principal, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
