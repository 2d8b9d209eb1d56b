// Package logging owns the process-wide arbor logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"investment-research/config"
)

var (
	global arbor.ILogger
	mu     sync.RWMutex
)

func consoleWriter() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}
}

// Get returns the process logger, creating a console logger on first use.
func Get() arbor.ILogger {
	mu.RLock()
	if global != nil {
		defer mu.RUnlock()
		return global
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = arbor.NewLogger().WithConsoleWriter(consoleWriter())
	}
	return global
}

// Init builds the logger described by cfg and installs it as the process logger.
func Init(cfg config.LoggingConfig) arbor.ILogger {
	mu.Lock()
	defer mu.Unlock()

	logger := arbor.NewLogger()

	var console, file bool
	for _, out := range cfg.Outputs {
		switch out {
		case "console", "stdout":
			console = true
		case "file":
			file = true
		}
	}

	if file && cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot create log directory: %v\n", err)
			console = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   cfg.File,
				TimeFormat: "15:04:05",
				MaxSize:    50 * 1024 * 1024,
				MaxBackups: 3,
				TextOutput: true,
			})
		}
	}
	if console || !file {
		logger = logger.WithConsoleWriter(consoleWriter())
	}

	logger = logger.WithLevelFromString(cfg.Level)
	global = logger
	return logger
}
