package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, int64(0), c.Value())
	assert.Equal(t, int64(1), c.Increment())
	assert.Equal(t, int64(2), c.Increment())
	assert.Equal(t, int64(2), c.Value())

	c.Reset()
	assert.Equal(t, int64(0), c.Value())
	assert.Equal(t, int64(1), c.Increment())
}

func TestConcurrentIncrement(t *testing.T) {
	c := NewCounter()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Increment()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(5000), c.Value())
}
