package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiffHandlesNegativeOrdering(t *testing.T) {
	base := time.Now()
	later := base.Add(250 * time.Millisecond)

	assert.Equal(t, 250*time.Millisecond, Diff(later, base))
	assert.Equal(t, -250*time.Millisecond, Diff(base, later))
}

func TestSleepUntilReturnsImmediatelyForPastDeadline(t *testing.T) {
	start := time.Now()
	SleepUntil(start.Add(-time.Hour))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSleepUntilBlocksUntilDeadline(t *testing.T) {
	start := time.Now()
	deadline := start.Add(30 * time.Millisecond)
	SleepUntil(deadline)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}
