package core

import (
	"io"
	"os"
	"strings"

	"github.com/viatext/vtnode/std/log"
)

var logFileObj *os.File

// OpenLogger replaces the default logger according to the configuration.
func OpenLogger(c *Config) error {
	var w io.Writer = os.Stderr
	if c.Core.LogFile != "" {
		f, err := os.OpenFile(c.ResolveRelPath(c.Core.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		logFileObj = f
		w = f
	}

	var logger *log.Logger
	if strings.EqualFold(c.Core.LogFormat, "json") {
		logger = log.NewJson(w)
	} else {
		logger = log.NewText(w)
	}

	level, err := log.ParseLevel(c.Core.LogLevel)
	if err != nil {
		CloseLogger()
		return err
	}
	logger.SetLevel(level)
	log.SetDefault(logger)
	return nil
}

// CloseLogger closes the log file, if any, and logs to stderr again.
func CloseLogger() {
	if logFileObj != nil {
		log.SetDefault(log.NewText(os.Stderr))
		logFileObj.Close()
		logFileObj = nil
	}
}
