package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"medisearch-backend/lib/catalog"
)

func countingAcquire(calls *atomic.Int32) AcquireFunc {
	return func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		return fmt.Sprintf("cookie-%d", n), nil
	}
}

func TestLazyAcquire(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(catalog.SourceCruzVerde, countingAcquire(&calls))

	require.Equal(t, int32(0), calls.Load())

	cred, err := m.Credential(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cookie-1", cred.RawValue)
	require.Equal(t, catalog.SourceCruzVerde, cred.Source)

	// second read reuses the cached credential
	cred, err = m.Credential(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cookie-1", cred.RawValue)
	require.Equal(t, int32(1), calls.Load())
}

func TestRenewOnceThenSucceed(t *testing.T) {
	var acquires atomic.Int32
	m := NewManager(catalog.SourceCruzVerde, countingAcquire(&acquires))

	var callCount int
	err := m.Do(context.Background(), func(ctx context.Context, cred Credential) error {
		callCount++
		if cred.RawValue == "cookie-1" {
			return fmt.Errorf("backend said INVALID_SESSION: %w", ErrExpired)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, callCount)
	require.Equal(t, int32(2), acquires.Load())
}

func TestRenewOnceThenFailTerminally(t *testing.T) {
	var acquires atomic.Int32
	m := NewManager(catalog.SourceCruzVerde, countingAcquire(&acquires))

	var callCount int
	err := m.Do(context.Background(), func(ctx context.Context, cred Credential) error {
		callCount++
		return ErrExpired
	})
	require.ErrorIs(t, err, ErrExpired)
	// one initial call + exactly one retry, no infinite loop
	require.Equal(t, 2, callCount)
	require.Equal(t, int32(2), acquires.Load())
}

func TestNonExpiryErrorIsNotRetried(t *testing.T) {
	var acquires atomic.Int32
	m := NewManager(catalog.SourceCruzVerde, countingAcquire(&acquires))

	boom := errors.New("connection refused")
	var callCount int
	err := m.Do(context.Background(), func(ctx context.Context, cred Credential) error {
		callCount++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, callCount)
}

func TestConcurrentRenewalIsSerialized(t *testing.T) {
	var acquires atomic.Int32
	m := NewManager(catalog.SourceCruzVerde, countingAcquire(&acquires))

	// prime the shared credential
	_, err := m.Credential(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Do(context.Background(), func(ctx context.Context, cred Credential) error {
				if cred.RawValue == "cookie-1" {
					return ErrExpired
				}
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// all sixteen callers saw the same expired credential, only one
	// renewal should have happened for the lot
	require.Equal(t, int32(2), acquires.Load())
}
