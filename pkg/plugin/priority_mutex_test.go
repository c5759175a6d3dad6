package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBooster struct {
	boosts   int
	restores int
}

func (f *fakeBooster) boost()   { f.boosts++ }
func (f *fakeBooster) restore() { f.restores++ }

func TestPriorityMutexBoostsOnLockAndRestoresOnUnlock(t *testing.T) {
	booster := &fakeBooster{}
	m := newPriorityMutexWithBooster(booster)

	m.Lock()
	assert.Equal(t, 1, booster.boosts)
	assert.Equal(t, 0, booster.restores)

	m.Unlock()
	assert.Equal(t, 1, booster.boosts)
	assert.Equal(t, 1, booster.restores)
}

func TestPriorityMutexSerializesCriticalSections(t *testing.T) {
	booster := &fakeBooster{}
	m := newPriorityMutexWithBooster(booster)

	done := make(chan struct{})
	m.Lock()
	go func() {
		m.Lock()
		m.Unlock()
		close(done)
	}()

	assert.Equal(t, 1, booster.boosts)
	m.Unlock()
	<-done
	assert.Equal(t, 2, booster.boosts)
	assert.Equal(t, 2, booster.restores)
}
