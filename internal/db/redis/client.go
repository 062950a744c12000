package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/travellive/tourquery/internal/db"
)

// Compile-time checks.
var (
	_ db.Conn    = (*Store)(nil)
	_ db.KVStore = (*Store)(nil)
)

// Config holds connection parameters for a Redis store.
// URL, when set, takes precedence over Addrs.
type Config struct {
	URL      string
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Conn and db.KVStore via rueidis for Redis 8+ with the
// query engine (FT.*) and JSON modules.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis. rueidis dials on construction, so an
// unreachable server fails here.
func NewStore(cfg Config) (*Store, error) {
	opt, err := clientOption(cfg)
	if err != nil {
		return nil, err
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

func clientOption(cfg Config) (rueidis.ClientOption, error) {
	var opt rueidis.ClientOption
	if cfg.URL != "" {
		parsed, err := rueidis.ParseURL(cfg.URL)
		if err != nil {
			return opt, fmt.Errorf("parse url: %w", err)
		}
		opt = parsed
	} else {
		if len(cfg.Addrs) == 0 {
			return opt, fmt.Errorf("addrs is required")
		}
		opt = rueidis.ClientOption{
			InitAddress: cfg.Addrs,
			Username:    cfg.Username,
			Password:    cfg.Password,
			SelectDB:    cfg.DB,
		}
	}
	opt.DisableCache = true
	opt.AlwaysRESP2 = true // FT.SEARCH result parsing expects RESP2 array format
	return opt, nil
}

// Dial opens a store from a redis:// URL and verifies it answers PING within
// timeout. The client is closed again when the server does not answer.
func Dial(ctx context.Context, url string, timeout time.Duration) (*Store, error) {
	s, err := NewStore(Config{URL: url})
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	if err := s.WaitForReady(ctx, timeout); err != nil {
		s.client.Close()
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	return s, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Collection returns a handle over documents stored under the "<name>:" key prefix.
// Redis has no database namespace beyond the selected DB, so database is ignored.
func (s *Store) Collection(_, name string) db.Collection {
	return &collection{store: s, prefix: name + ":"}
}

// Close shuts down the client.
func (s *Store) Close(_ context.Context) error {
	s.client.Close()
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
