package kafka

// Config holds Kafka connection parameters.
type Config struct {
	Brokers []string

	// BatchTimeout bounds how long the writer buffers messages before
	// flushing, in milliseconds. Zero uses the writer default.
	BatchTimeoutMs int
}
