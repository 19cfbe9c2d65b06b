package publisher

// Publisher fans newly committed deals out to downstream consumers
type Publisher interface {
	// Publish publishes a committed deal payload under the source key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
