//go:build debug

package channel

// New creates a new channel.
// Debug builds hand out unbuffered channels so every write rendezvouses with
// the writer goroutine and ordering problems surface early.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
