package retry

import (
	"errors"
	"fmt"
)

const defaultMaxAttempts = 1000

var ErrExhausted = errors.New("attempts exhausted")

type Config struct {
	// MaxAttempts bounds the number of draws. Zero or less means default.
	MaxAttempts int
}

func (c *Config) normalize() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
}

// Until draws candidates until accept reports true for one of them.
//
// Returns [ErrExhausted] when no candidate is accepted
// within c.MaxAttempts draws.
func Until[T any](c Config, draw func() T, accept func(T) bool) (T, error) {
	var zero T

	c.normalize()

	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		v := draw()
		if accept(v) {
			return v, nil
		}
	}

	return zero, fmt.Errorf("%w: %d draws", ErrExhausted, c.MaxAttempts)
}
