package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	delimiter string
	chunkSize int
	strict    bool
}

func (c *fakeConfig) setChunkSize(n int) error {
	if n <= 0 {
		return errors.New("chunk size must be positive")
	}
	c.chunkSize = n

	return nil
}

func TestOption_New(t *testing.T) {
	t.Run("applies and reports success", func(t *testing.T) {
		cfg := &fakeConfig{}
		opt := New(func(c *fakeConfig) error { return c.setChunkSize(200) })

		require.NoError(t, opt.apply(cfg))
		require.Equal(t, 200, cfg.chunkSize)
	})

	t.Run("propagates the option's error", func(t *testing.T) {
		cfg := &fakeConfig{}
		opt := New(func(c *fakeConfig) error { return c.setChunkSize(0) })

		err := opt.apply(cfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "chunk size must be positive")
	})
}

func TestOption_NoError(t *testing.T) {
	cfg := &fakeConfig{}
	opt := NoError(func(c *fakeConfig) { c.delimiter = "|" })

	require.NoError(t, opt.apply(cfg))
	require.Equal(t, "|", cfg.delimiter)
}

func TestOption_Apply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &fakeConfig{}
		err := Apply(cfg,
			NoError(func(c *fakeConfig) { c.delimiter = "," }),
			New(func(c *fakeConfig) error { return c.setChunkSize(50) }),
			NoError(func(c *fakeConfig) { c.strict = true }),
		)

		require.NoError(t, err)
		require.Equal(t, ",", cfg.delimiter)
		require.Equal(t, 50, cfg.chunkSize)
		require.True(t, cfg.strict)
	})

	t.Run("stops at the first failing option", func(t *testing.T) {
		cfg := &fakeConfig{}
		err := Apply(cfg,
			New(func(c *fakeConfig) error { return c.setChunkSize(10) }),
			New(func(c *fakeConfig) error { return c.setChunkSize(-1) }),
			NoError(func(c *fakeConfig) { c.delimiter = "never set" }),
		)

		require.Error(t, err)
		require.Equal(t, 10, cfg.chunkSize)
		require.Empty(t, cfg.delimiter, "options after the failure must not run")
	})

	t.Run("no options is a no-op", func(t *testing.T) {
		cfg := &fakeConfig{}
		require.NoError(t, Apply(cfg))
		require.Zero(t, *cfg)
	})
}
