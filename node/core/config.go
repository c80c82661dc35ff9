package core

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mazen160/go-random"
	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/node/display"
	"github.com/viatext/vtnode/node/face"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/std/log"
	"github.com/viatext/vtnode/std/storage"
	"github.com/viatext/vtnode/std/utils"
	"github.com/viatext/vtnode/std/utils/toolutils"
)

// Config represents the configuration of the node.
type Config struct {
	Core struct {
		// Logging level
		LogLevel string `json:"log_level"`
		// Output log to file
		LogFile string `json:"log_file"`
		// text or json
		LogFormat string `json:"log_format"`

		// Config file base dir
		BaseDir string `json:"-"`
		// Enable CPU profiling
		CpuProfile string `json:"-"`
		// Enable memory profiling
		MemProfile string `json:"-"`
	} `json:"core"`

	Node struct {
		// Persistence namespace
		Namespace string `json:"namespace"`
		// Broadcast a hello once the faces are up
		AnnounceOnBoot bool `json:"announce_on_boot"`
		// Size of the inbound frame queue
		QueueSize int `json:"queue_size"`
		// Pick a random factory id instead of the fixed one
		RandomID bool `json:"random_id"`
		// Diagnostics source: stub or host
		Probe string `json:"probe"`

		// Factory values used when nothing is stored
		Defaults Defaults `json:"defaults"`
	} `json:"node"`

	Storage struct {
		// memory, toml, badger or sqlite
		Backend string `json:"backend"`
		// Database file or directory (relative to the config file)
		Path string `json:"path"`
	} `json:"storage"`

	Faces struct {
		Serial struct {
			Enabled bool   `json:"enabled"`
			Port    string `json:"port"`
			Baud    int    `json:"baud"`
		} `json:"serial"`

		Stream struct {
			Enabled bool `json:"enabled"`
			// tcp or unix
			Network string `json:"network"`
			// host:port, or socket path (relative to the config file)
			Address string `json:"address"`
		} `json:"stream"`

		WebSocket struct {
			Enabled bool   `json:"enabled"`
			Bind    string `json:"bind"`
			Port    uint16 `json:"port"`
		} `json:"websocket"`
	} `json:"faces"`

	Display struct {
		// Log identity and message events
		Log bool `json:"log"`
		// Status LED on a GPIO line
		Led display.LedConfig `json:"led"`
	} `json:"display"`
}

// Defaults are the factory values of the settable fields.
type Defaults struct {
	ID        string `json:"id"`
	Alias     string `json:"alias"`
	FreqHz    uint32 `json:"freq_hz"`
	SF        uint8  `json:"sf"`
	BwHz      uint32 `json:"bw_hz"`
	CR        uint8  `json:"cr"`
	TxPwrDbm  int8   `json:"tx_pwr"`
	Chan      uint8  `json:"chan"`
	Mode      uint8  `json:"mode"`
	Hops      uint8  `json:"hops"`
	BeaconSec uint32 `json:"beacon_s"`
	BufSize   uint16 `json:"buf_size"`
	AckMode   uint8  `json:"ack_mode"`
}

// DefaultConfig returns the configuration used when a key is absent.
func DefaultConfig() *Config {
	c := &Config{}
	c.Core.LogLevel = "INFO"
	c.Core.LogFile = ""
	c.Core.LogFormat = "text"

	c.Node.Namespace = "viatext"
	c.Node.AnnounceOnBoot = true
	c.Node.QueueSize = 64
	c.Node.RandomID = false
	c.Node.Probe = "host"
	c.Node.Defaults = Defaults{
		ID:        table.DefaultID,
		Alias:     table.DefaultAlias,
		FreqHz:    uint32(table.DefaultFreqHz),
		SF:        uint8(table.DefaultSF),
		BwHz:      uint32(table.DefaultBwHz),
		CR:        uint8(table.DefaultCR),
		TxPwrDbm:  int8(table.DefaultTxPwrDbm),
		Chan:      uint8(table.DefaultChan),
		Mode:      uint8(table.DefaultMode),
		Hops:      uint8(table.DefaultHops),
		BeaconSec: uint32(table.DefaultBeaconSec),
		BufSize:   uint16(table.DefaultBufSize),
		AckMode:   uint8(table.DefaultAckMode),
	}

	c.Storage.Backend = "badger"
	c.Storage.Path = "vtnode-state"

	c.Faces.Serial.Enabled = false
	c.Faces.Serial.Port = utils.If(runtime.GOOS == "darwin", "/dev/tty.usbserial", "/dev/ttyUSB0")
	c.Faces.Serial.Baud = face.DefaultBaud

	c.Faces.Stream.Enabled = true
	c.Faces.Stream.Network = "unix"
	c.Faces.Stream.Address = utils.If(runtime.GOOS == "darwin", "/var/run/vtnode/vtnode.sock", "/run/vtnode/vtnode.sock")

	c.Faces.WebSocket.Enabled = false
	c.Faces.WebSocket.Bind = ""
	c.Faces.WebSocket.Port = 9797

	c.Display.Log = true
	c.Display.Led.Enabled = false
	c.Display.Led.Chip = "gpiochip0"
	c.Display.Led.Line = 25
	c.Display.Led.PulseMs = 150

	return c
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(file string) (*Config, error) {
	c := DefaultConfig()
	c.Core.BaseDir = filepath.Dir(file)
	if err := toolutils.ReadYaml(c, file); err != nil {
		return nil, err
	}
	if err := c.Parse(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse validates the configuration and fills derived values.
func (c *Config) Parse() error {
	if _, err := log.ParseLevel(c.Core.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Core.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Core.LogFormat)
	}

	if c.Node.Namespace == "" {
		return fmt.Errorf("node namespace must not be empty")
	}
	if c.Node.QueueSize < 1 {
		return fmt.Errorf("node queue size must be positive")
	}
	switch c.Node.Probe {
	case "stub", "host":
	default:
		return fmt.Errorf("unknown probe %q", c.Node.Probe)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "memory", "toml", "badger", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Node.RandomID {
		c.Node.Defaults.ID = RandomID(8)
	}
	if _, err := c.FieldDefaults(); err != nil {
		return err
	}

	if c.Faces.Stream.Enabled {
		switch c.Faces.Stream.Network {
		case "tcp", "tcp4", "tcp6", "unix":
		default:
			return fmt.Errorf("unsupported stream network %q", c.Faces.Stream.Network)
		}
	}
	return nil
}

// ResolveRelPath resolves a possibly relative path based on config file path.
func (c *Config) ResolveRelPath(target string) string {
	if target == "" || filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(c.Core.BaseDir, target)
}

// StorageConfig locates the persistence backend.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend:   c.Storage.Backend,
		Path:      c.ResolveRelPath(c.Storage.Path),
		Namespace: c.Node.Namespace,
	}
}

// FieldDefaults builds the node field set with the configured factory
// values. Every value must pass the field's validator.
func (c *Config) FieldDefaults() (map[defn.Tag]table.Value, error) {
	d := c.Node.Defaults
	values := map[defn.Tag]table.Value{
		defn.TagID:        table.Text(d.ID),
		defn.TagAlias:     table.Text(d.Alias),
		defn.TagFreqHz:    table.Num(int64(d.FreqHz)),
		defn.TagSF:        table.Num(int64(d.SF)),
		defn.TagBwHz:      table.Num(int64(d.BwHz)),
		defn.TagCR:        table.Num(int64(d.CR)),
		defn.TagTxPwrDbm:  table.Num(int64(d.TxPwrDbm)),
		defn.TagChan:      table.Num(int64(d.Chan)),
		defn.TagMode:      table.Num(int64(d.Mode)),
		defn.TagHops:      table.Num(int64(d.Hops)),
		defn.TagBeaconSec: table.Num(int64(d.BeaconSec)),
		defn.TagBufSize:   table.Num(int64(d.BufSize)),
		defn.TagAckMode:   table.Num(int64(d.AckMode)),
	}

	fields := table.DefaultFields(table.StubProbe{})
	if err := table.OverrideDefaults(fields, values); err != nil {
		return nil, fmt.Errorf("node defaults: %w", err)
	}
	return values, nil
}

// RandomID returns an id of n characters drawn from [A-Za-z0-9].
func RandomID(n int) string {
	var sb strings.Builder
	for sb.Len() < n {
		s, err := random.String(n)
		if err != nil {
			return table.DefaultID
		}
		for i := 0; i < len(s) && sb.Len() < n; i++ {
			if table.IsIDChar(s[i]) {
				sb.WriteByte(s[i])
			}
		}
	}
	return sb.String()
}
