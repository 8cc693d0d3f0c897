package memory

import (
	"sync/atomic"

	"github.com/lamassuiot/ocsp-mockserver/pkg/counter"
)

type memory struct {
	n int64
}

// NewCounter returns a process-lifetime counter starting at zero.
func NewCounter() counter.Counter {
	return &memory{}
}

func (m *memory) Increment() int64 {
	return atomic.AddInt64(&m.n, 1)
}

func (m *memory) Reset() {
	atomic.StoreInt64(&m.n, 0)
}

func (m *memory) Value() int64 {
	return atomic.LoadInt64(&m.n)
}
