// Package session manages the renewable credentials (browser-derived
// cookie sets) some source APIs require, with the single-renewal retry
// policy those backends need.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"medisearch-backend/lib/catalog"
)

var tracer = otel.Tracer("lib/session")

// ErrExpired is the signal a call reports when the backend rejected the
// attached credential. Callers wrap it so errors.Is still matches.
var ErrExpired = errors.New("session expired")

// Credential is an ephemeral session token. It is replaced wholesale on
// renewal, never merged, and never persisted.
type Credential struct {
	RawValue   string
	Source     catalog.SourceID
	AcquiredAt time.Time
}

// AcquireFunc obtains a fresh credential, usually by simulating a real
// browser visit through the render capability.
type AcquireFunc func(ctx context.Context) (string, error)

// Manager caches one credential per source and renews it at most once
// per logical request when the backend signals expiry. Renewal is
// serialized: concurrent callers hitting an expired session trigger a
// single acquire, the rest reuse its result.
type Manager struct {
	source  catalog.SourceID
	acquire AcquireFunc

	mu   sync.Mutex
	cred *Credential
}

func NewManager(source catalog.SourceID, acquire AcquireFunc) *Manager {
	return &Manager{source: source, acquire: acquire}
}

// Credential returns the cached credential, acquiring one lazily on the
// first authenticated call.
func (m *Manager) Credential(ctx context.Context) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred != nil {
		return *m.cred, nil
	}
	return m.renewLocked(ctx)
}

// renew replaces the credential unless another caller already replaced
// the one `stale` refers to, in which case the newer credential wins.
func (m *Manager) renew(ctx context.Context, stale Credential) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred != nil && m.cred.AcquiredAt.After(stale.AcquiredAt) {
		return *m.cred, nil
	}
	return m.renewLocked(ctx)
}

func (m *Manager) renewLocked(ctx context.Context) (Credential, error) {
	ctx, span := tracer.Start(ctx, "session:renew")
	defer span.End()

	raw, err := m.acquire(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire session credential")
		return Credential{}, fmt.Errorf("acquire %s session: %w", m.source, err)
	}

	cred := Credential{
		RawValue:   raw,
		Source:     m.source,
		AcquiredAt: time.Now(),
	}
	m.cred = &cred
	slog.DebugContext(ctx, "session credential renewed", "source", m.source)
	return cred, nil
}

// Do runs one logical request. When the call reports ErrExpired the
// manager renews the credential and retries the same call exactly once;
// a second expiry is terminal for this request.
func (m *Manager) Do(ctx context.Context, call func(ctx context.Context, cred Credential) error) error {
	cred, err := m.Credential(ctx)
	if err != nil {
		return err
	}

	err = call(ctx, cred)
	if !errors.Is(err, ErrExpired) {
		return err
	}

	slog.InfoContext(ctx, "session rejected, renewing once", "source", m.source)
	cred, renewErr := m.renew(ctx, cred)
	if renewErr != nil {
		return renewErr
	}

	err = call(ctx, cred)
	if errors.Is(err, ErrExpired) {
		return fmt.Errorf("%s session still invalid after renewal: %w", m.source, err)
	}
	return err
}
