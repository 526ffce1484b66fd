package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Entry
)

type Fields = logrus.Fields

func init() {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
}

func SetLevel(l logrus.Level) {
	logger.Logger.SetLevel(l)
}

// SetOutput redirects all package logging, mostly for tests and the CLI
func SetOutput(w io.Writer) {
	logger.Logger.SetOutput(w)
}

// SetJSON switches to structured JSON output for the daemon
func SetJSON(on bool) {
	if on {
		logger.Logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.Logger.SetFormatter(&logrus.TextFormatter{})
}

func Entry() *logrus.Entry {
	return logger
}

func WithError(e error) *logrus.Entry {
	return logger.WithError(e)
}

func WithFields(f Fields) *logrus.Entry {
	return logger.WithFields(f)
}

// Component tags log records with the emitting subsystem
func Component(name string) *logrus.Entry {
	return logger.WithField("component", name)
}

func Error(args ...interface{}) {
	logger.Error(args...)
}
