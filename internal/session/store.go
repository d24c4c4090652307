// Package session remembers which voting a client has selected.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/pkg/cache"
	"go.uber.org/zap"
)

const defaultTTL = 24 * time.Hour

// ErrNoSelection means the session has no active voting.
var ErrNoSelection = errors.New("no voting selected")

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type selection struct {
	Voting     string    `json:"voting"`
	SelectedAt time.Time `json:"selected_at"`
}

type Store struct {
	cache  Cacher
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(c Cacher, ttl time.Duration, logger *zap.Logger) *Store {
	if c == nil {
		panic("nil Cacher provided to NewStore")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cache: c, ttl: ttl, logger: logger.Named("session")}
}

func key(id string) string {
	return fmt.Sprintf("session:%s:voting", id)
}

// Select makes voting the active voting of session id. Each selection
// restarts the session lifetime.
func (s *Store) Select(ctx context.Context, id, voting string) error {
	sel := selection{Voting: voting, SelectedAt: time.Now().UTC()}
	if err := s.cache.Set(ctx, key(id), sel, s.ttl); err != nil {
		return fmt.Errorf("%w: save session: %v", domain.ErrConnection, err)
	}
	s.logger.Debug("voting selected", zap.String("session", id), zap.String("voting", voting))
	return nil
}

// Active returns the selected voting or ErrNoSelection.
func (s *Store) Active(ctx context.Context, id string) (string, error) {
	var sel selection
	err := s.cache.Get(ctx, key(id), &sel)
	switch {
	case errors.Is(err, cache.ErrMiss):
		return "", ErrNoSelection
	case err != nil:
		return "", fmt.Errorf("%w: load session: %v", domain.ErrConnection, err)
	case sel.Voting == "":
		return "", ErrNoSelection
	}
	return sel.Voting, nil
}

// Forget clears the selection, e.g. after the voting was deleted.
func (s *Store) Forget(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, key(id)); err != nil {
		return fmt.Errorf("%w: clear session: %v", domain.ErrConnection, err)
	}
	return nil
}
