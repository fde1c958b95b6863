// Package api implements HTTP handlers and helpers for the tour dispatch
// service.
package api

import (
	"context"
	"os"
	"strings"

	"tourdispatch/internal/auth"
	"tourdispatch/internal/store"
)

type Server struct {
	Store  store.Store
	Auth   *auth.Verifier
	Broker EventBroker
}

// NewServer creates a Server. If DATABASE_URL is unset, uses the in-memory
// store; if REDIS_URL is set, events go through Redis pub/sub so instances
// share a stream.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// best effort; production schemas are managed out of band
		_ = sp.Migrate(context.Background())
		s = sp
	}
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{Store: s, Auth: auth.NewVerifierFromEnv(), Broker: broker}, nil
}
