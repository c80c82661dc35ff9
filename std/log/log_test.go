package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viatext/vtnode/std/log"
)

type comp struct{}

func (comp) String() string { return "radio" }

func TestParseLevel(t *testing.T) {
	lvl, err := log.ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, log.LevelDebug, lvl)

	lvl, err = log.ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, log.LevelWarn, lvl)

	_, err = log.ParseLevel("loud")
	require.Error(t, err)
}

func TestLoggerLevelAndTag(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewText(&buf)

	l.Debug(comp{}, "hidden")
	require.Empty(t, buf.String())

	l.Info(comp{}, "tuned", "sf", 9)
	require.Contains(t, buf.String(), "tag=radio")
	require.Contains(t, buf.String(), "level=INFO")
	require.Contains(t, buf.String(), "sf=9")

	prev := l.SetLevel(log.LevelError)
	require.Equal(t, log.LevelInfo, prev)
	buf.Reset()
	l.Warn(nil, "dropped")
	require.Empty(t, buf.String())
}

func TestLoggerCountsWarnings(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewJson(&buf)

	l.Info(nil, "ok")
	l.Warn(nil, "store unavailable")
	l.Error(nil, "write failed")
	require.Equal(t, uint64(2), l.Warnings())

	// filtered records are not counted
	l.SetLevel(log.LevelFatal)
	l.Warn(nil, "suppressed")
	require.Equal(t, uint64(2), l.Warnings())
}
