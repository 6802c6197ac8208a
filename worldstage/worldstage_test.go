package worldstage

import (
	"testing"

	"pkg.world.dev/blockshard/assert"
)

func TestNewManagerStartsInInit(t *testing.T) {
	m := NewManager()
	assert.Equal(t, Init, m.Current())
	assert.Equal(t, Init, m.Swap(ShutDown))
	assert.Equal(t, ShutDown, m.Current())
}

func TestCompareAndSwap(t *testing.T) {
	m := NewManager()
	assert.Check(t, !m.CompareAndSwap(Running, ShutDown), "stage should still be Init")
	assert.Check(t, m.CompareAndSwap(Init, Starting))
	assert.Check(t, m.Is(Starting, Running))
	assert.Check(t, !m.Is(Init))
}

func TestOnlyOneCompareAndSwapSuccess(t *testing.T) {
	successCh := make(chan bool)
	m := NewManager()

	for i := 0; i < 10; i++ {
		go func() {
			successCh <- m.CompareAndSwap(Init, Starting)
		}()
	}

	successCount := 0
	for i := 0; i < 10; i++ {
		if <-successCh {
			successCount++
		}
	}
	assert.Equal(t, 1, successCount)
}
