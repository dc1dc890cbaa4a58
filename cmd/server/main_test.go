package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/gratitude-journal/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "version"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "gj-server dev"))
}

func TestLoadViper_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("GJ_ADDR", ":9000")
	t.Setenv("GJ_LOG_LEVEL", "warn")

	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--addr", ":7000"}))

	v, err := loadViper(root)
	require.NoError(t, err)
	assert.Equal(t, ":7000", v.GetString(config.KeyAddr))
	assert.Equal(t, "warn", v.GetString(config.KeyLogLevel), "unset flags must not shadow env")
}

func TestServe_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("GJ_JWT_SECRET", "short")

	root := newRootCmd()
	root.SetArgs([]string{"serve", "--dsn", "postgres://localhost/x"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}
