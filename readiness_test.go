package blacksky

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadySignal_FiresOnce(t *testing.T) {
	sig := NewReadySignal()
	calls := 0
	sig.OnReady(func() { calls++ })

	assert.True(t, sig.Fire())
	assert.False(t, sig.Fire())
	assert.False(t, sig.Fail(errors.New("late")))
	assert.Equal(t, 1, calls)

	state, err := sig.State()
	assert.Equal(t, ReadyOK, state)
	assert.NoError(t, err)
}

func TestReadySignal_LateSubscriberRunsImmediately(t *testing.T) {
	sig := NewReadySignal()
	sig.Fire()

	ran := false
	sig.OnReady(func() { ran = true })
	assert.True(t, ran)

	select {
	case <-sig.Done():
	default:
		t.Fatal("Done not closed after Fire")
	}
}

func TestReadySignal_FailureSkipsReadyCallbacks(t *testing.T) {
	sig := NewReadySignal()
	boom := errors.New("no adapter")

	ready := false
	var gotErr error
	sig.OnReady(func() { ready = true })
	sig.OnFail(func(err error) { gotErr = err })

	assert.True(t, sig.Fail(boom))
	assert.False(t, ready)
	assert.Same(t, boom, gotErr)

	sig.OnReady(func() { ready = true })
	assert.False(t, ready)

	var late error
	sig.OnFail(func(err error) { late = err })
	assert.Same(t, boom, late)

	state, err := sig.State()
	assert.Equal(t, ReadyFailed, state)
	assert.Same(t, boom, err)
}

func TestReadySignal_ConcurrentFire(t *testing.T) {
	sig := NewReadySignal()
	var mu sync.Mutex
	calls := 0
	sig.OnReady(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- sig.Fire()
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, calls)
}

func TestEnsureRendererReady_Shared(t *testing.T) {
	app := NewApp()
	a := ensureRendererReady(app)
	b := ensureRendererReady(app)
	require.NotNil(t, a)
	assert.Same(t, a, b)
}
