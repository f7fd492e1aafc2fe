package blacksky

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeModule_FixedStep(t *testing.T) {
	app := NewApp().UseModules(TimeModule{FixedStep: time.Second / 60})
	app.FlushCommands()
	clock := mustResource[Time](t, app)
	start := clock.Time

	app.RunFrames(60)

	assert.Equal(t, uint64(60), clock.Frame)
	assert.Equal(t, time.Second/60, clock.Dt)
	assert.InDelta(t, 1.0/60, clock.DeltaSeconds(), 1e-6)
	assert.Equal(t, 60*(time.Second/60), clock.Time.Sub(start))
}

func TestTimeModule_WallClock(t *testing.T) {
	app := NewApp().UseModules(TimeModule{})
	app.FlushCommands()

	app.RunFrames(2)
	clock := mustResource[Time](t, app)
	assert.Equal(t, uint64(2), clock.Frame)
	assert.GreaterOrEqual(t, clock.Dt, time.Duration(0))
}
