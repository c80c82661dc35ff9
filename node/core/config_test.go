package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/node/core"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/std/log"
	tu "github.com/viatext/vtnode/std/utils/testutils"
)

func writeConfig(t *testing.T, text string) string {
	file := filepath.Join(t.TempDir(), "vtnode.yml")
	require.NoError(t, os.WriteFile(file, []byte(text), 0o644))
	return file
}

func TestDefaultConfig(t *testing.T) {
	c := core.DefaultConfig()
	require.NoError(t, c.Parse())
	assert.Equal(t, "viatext", c.Node.Namespace)
	assert.Equal(t, "HckrMn", c.Node.Defaults.ID)
	assert.Equal(t, uint32(915000000), c.Node.Defaults.FreqHz)
	assert.Equal(t, int8(17), c.Node.Defaults.TxPwrDbm)
	assert.Equal(t, 115200, c.Faces.Serial.Baud)
}

func TestLoadConfig(t *testing.T) {
	tu.SetT(t)
	file := writeConfig(t, `
core:
  log_level: debug
  log_format: json
node:
  namespace: bench
  queue_size: 8
  probe: stub
  defaults:
    id: Base01
    freq_hz: 868000000
    tx_pwr: -3
storage:
  backend: toml
  path: state/prefs.toml
faces:
  stream:
    enabled: true
    network: tcp
    address: 127.0.0.1:0
`)
	c := tu.NoErr(core.LoadConfig(file))
	assert.Equal(t, "debug", c.Core.LogLevel)
	assert.Equal(t, "bench", c.Node.Namespace)
	assert.Equal(t, "Base01", c.Node.Defaults.ID)
	assert.Equal(t, int8(-3), c.Node.Defaults.TxPwrDbm)
	// untouched keys keep their defaults
	assert.Equal(t, uint8(9), c.Node.Defaults.SF)

	sc := c.StorageConfig()
	assert.Equal(t, "toml", sc.Backend)
	assert.Equal(t, filepath.Join(filepath.Dir(file), "state/prefs.toml"), sc.Path)
	assert.Equal(t, "bench", sc.Namespace)

	values := tu.NoErr(c.FieldDefaults())
	assert.Equal(t, table.Text("Base01"), values[defn.TagID])
	assert.Equal(t, table.Num(-3), values[defn.TagTxPwrDbm])
}

func TestLoadConfigErrors(t *testing.T) {
	for name, text := range map[string]string{
		"unknown key":     "node:\n  colour: red\n",
		"bad level":       "core:\n  log_level: LOUD\n",
		"bad backend":     "storage:\n  backend: eeprom\n",
		"bad sf":          "node:\n  defaults:\n    sf: 13\n",
		"bad id":          "node:\n  defaults:\n    id: \"no spaces\"\n",
		"bad probe":       "node:\n  probe: radio\n",
		"bad queue":       "node:\n  queue_size: 0\n",
		"bad network":     "faces:\n  stream:\n    network: udp\n",
		"not yaml at all": "core: [\n",
	} {
		_, err := core.LoadConfig(writeConfig(t, text))
		assert.Error(t, err, name)
	}

	_, err := core.LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestRandomID(t *testing.T) {
	for range 20 {
		id := core.RandomID(8)
		require.Len(t, id, 8)
		require.NoError(t, table.ValidID(table.Text(id)))
	}

	c := core.DefaultConfig()
	c.Node.RandomID = true
	require.NoError(t, c.Parse())
	assert.Len(t, c.Node.Defaults.ID, 8)
}

func TestResolveRelPath(t *testing.T) {
	c := core.DefaultConfig()
	c.Core.BaseDir = "/etc/vtnode"
	assert.Equal(t, "/etc/vtnode/state", c.ResolveRelPath("state"))
	assert.Equal(t, "/var/lib/state", c.ResolveRelPath("/var/lib/state"))
	assert.Equal(t, "", c.ResolveRelPath(""))
}

func TestOpenLogger(t *testing.T) {
	prev := log.Default()
	defer log.SetDefault(prev)

	c := core.DefaultConfig()
	c.Core.BaseDir = t.TempDir()
	c.Core.LogFile = "node.log"
	c.Core.LogLevel = "WARN"
	require.NoError(t, core.OpenLogger(c))
	assert.Equal(t, log.LevelWarn, log.Default().Level())

	log.Info(nil, "hidden")
	log.Warn(nil, "shown")
	core.CloseLogger()

	text, err := os.ReadFile(filepath.Join(c.Core.BaseDir, "node.log"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "shown")
	assert.NotContains(t, string(text), "hidden")
}
