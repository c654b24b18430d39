package log

// Option transforms a config, returning the modified copy.
type Option func(config) config

// with returns a copy of the config with each option applied in order.
func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}
