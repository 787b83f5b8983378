package extract

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudget_Lifecycle(t *testing.T) {
	b := NewBudget(2)

	assert.True(t, b.CanCall())
	assert.Equal(t, 0, b.Used())
	assert.Equal(t, 2, b.Max())

	b.RecordCall()
	assert.True(t, b.CanCall())
	assert.Equal(t, 1, b.Used())

	b.RecordCall()
	assert.False(t, b.CanCall())
	assert.Equal(t, 2, b.Used())

	b.Reset()
	assert.True(t, b.CanCall())
	assert.Equal(t, 0, b.Used())
}

func TestBudget_ZeroMax(t *testing.T) {
	b := NewBudget(0)
	assert.False(t, b.CanCall())
}

func TestBudget_ConcurrentRecords(t *testing.T) {
	b := NewBudget(1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordCall()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, b.Used())
}
