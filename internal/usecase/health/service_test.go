package health

import (
	"context"
	"errors"
	"testing"

	"github.com/travellive/tourquery/internal/db"
	"github.com/travellive/tourquery/internal/domain"
)

// --- Mocks ---

type mockConn struct {
	err error
}

func (m *mockConn) Ping(_ context.Context) error         { return m.err }
func (m *mockConn) Collection(_, _ string) db.Collection { return nil }
func (m *mockConn) Close(_ context.Context) error        { return nil }

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.err }

type mockResources struct {
	conn    *mockConn
	connErr error
	emb     domain.Embedder
	embErr  error
}

func (m *mockResources) DatabaseConnection(_ context.Context, _ domain.ConnectionConfig) (db.Conn, error) {
	if m.connErr != nil {
		return nil, m.connErr
	}
	return m.conn, nil
}

func (m *mockResources) EmbeddingClient(_ context.Context, _ domain.ConnectionConfig) (domain.Embedder, error) {
	if m.embErr != nil {
		return nil, m.embErr
	}
	return m.emb, nil
}

type mockConfig struct {
	err error
}

func (m *mockConfig) Connection() (domain.ConnectionConfig, error) {
	return domain.ConnectionConfig{}, m.err
}

func healthyResources() *mockResources {
	return &mockResources{conn: &mockConn{}, emb: &mockEmbedder{}}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(healthyResources(), &mockConfig{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{CheckConfig, CheckDatabase, CheckEmbedding} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DBUnreachable(t *testing.T) {
	res := healthyResources()
	res.connErr = errors.New("server selection timeout")
	r := New(res, &mockConfig{}).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[CheckDatabase])
	}
	if r.Checks[CheckEmbedding] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks[CheckEmbedding])
	}
}

func TestCheck_PingError(t *testing.T) {
	res := healthyResources()
	res.conn.err = errors.New("conn reset")
	r := New(res, &mockConfig{}).Check(context.Background())

	if r.Checks[CheckDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[CheckDatabase])
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	res := healthyResources()
	res.emb = &mockEmbedder{err: errors.New("timeout")}
	r := New(res, &mockConfig{}).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckEmbedding] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks[CheckEmbedding])
	}
}

func TestCheck_AllDown(t *testing.T) {
	res := &mockResources{connErr: errors.New("refused"), embErr: errors.New("no key")}
	r := New(res, &mockConfig{}).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_ConfigError(t *testing.T) {
	r := New(healthyResources(), &mockConfig{err: domain.ErrConfiguration}).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckConfig] != CheckError {
		t.Errorf("expected config %q, got %q", CheckError, r.Checks[CheckConfig])
	}
	if _, ok := r.Checks[CheckDatabase]; ok {
		t.Error("database must not be checked without configuration")
	}
}
