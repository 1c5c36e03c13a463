package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestStaysClosedBelowThreshold(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 3, ResetTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	}
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestOpensAtThreshold(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errBoom })
	}

	err := cb.Execute(func() error {
		t.Fatal("call must not run while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 3, ResetTimeout: time.Minute})

	cb.Execute(func() error { return errBoom })
	cb.Execute(func() error { return errBoom })
	require.NoError(t, cb.Execute(func() error { return nil }))

	// Two more failures are again below the threshold.
	cb.Execute(func() error { return errBoom })
	cb.Execute(func() error { return errBoom })
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})

	cb.Execute(func() error { return errBoom })
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.NoError(t, cb.Execute(func() error { return nil }), "breaker closed again")
}

func TestHalfOpenProbeReopensOnFailure(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})

	cb.Execute(func() error { return errBoom })
	time.Sleep(20 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}
