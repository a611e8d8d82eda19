package util

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	root     = logrus.New()
	rootOnce sync.Once
)

// NewLogger returns the shared logger entry for a component.
func NewLogger(component string) *logrus.Entry {
	rootOnce.Do(func() {
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		level, err := logrus.ParseLevel(os.Getenv("POSTBOX_LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		root.SetLevel(level)
		root.SetOutput(os.Stderr)
	})

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}
	logger := root.WithField("component", component)
	loggers[component] = logger
	return logger
}

// ConfigureLogging applies the configured level and sink to every component
// logger. An empty logFile keeps stderr. The returned closer releases the
// log file, if any.
func ConfigureLogging(conf *AppConfig) (io.Closer, error) {
	NewLogger("logging")

	if conf.Conf.LogLevel != "" && os.Getenv("POSTBOX_LOG_LEVEL") == "" {
		level, err := logrus.ParseLevel(conf.Conf.LogLevel)
		if err != nil {
			root.Warnf("Unknown log level %q, keeping %s", conf.Conf.LogLevel, root.GetLevel())
		} else {
			root.SetLevel(level)
		}
	}

	if conf.Conf.LogFile == "" {
		return nopCloser{}, nil
	}

	path := ResolveFilePath(conf.Conf.LogFile)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nopCloser{}, err
	}
	root.SetOutput(file)
	return file, nil
}

// SetLogOutput redirects all component loggers; used by tests and the TUI.
func SetLogOutput(w io.Writer) {
	NewLogger("logging")
	root.SetOutput(w)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
