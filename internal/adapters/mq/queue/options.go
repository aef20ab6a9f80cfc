package queue

// Option applies a configuration option to the ChannelSink.
type Option func(*ChannelSink)

// WithBufferSize sets the buffer size for the events channel.
func WithBufferSize(size int) Option {
	return func(s *ChannelSink) {
		if size > 0 {
			s.bufferSize = size
		}
	}
}
