package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	t.Run("reads explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sweep.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"tenant_id":"contoso","client_id":"app","log_dir":"/var/log/sweep"}`), 0600))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, "contoso", s.TenantID)
		assert.Equal(t, "app", s.ClientID)
		assert.Equal(t, "/var/log/sweep", s.LogDir)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LoadSettings:ReadFile")
	})

	t.Run("missing default file yields empty settings", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		defer func() { _ = os.Chdir(wd) }()
		require.NoError(t, os.Chdir(t.TempDir()))

		s, err := LoadSettings("")
		require.NoError(t, err)
		assert.Equal(t, Settings{}, *s)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))

		_, err := LoadSettings(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LoadSettings:Unmarshal")
	})
}
