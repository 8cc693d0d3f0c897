package counter

// Counter tracks how many times the flaky login has been hit since the
// last reset. Implementations must be safe for concurrent use.
type Counter interface {
	Increment() int64
	Reset()
	Value() int64
}
