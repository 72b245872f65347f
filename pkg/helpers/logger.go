package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the process logger. Development gets readable text at
// debug level; every other environment gets JSON at info. Each entry carries
// the app and env fields.
func NewLogger(appName, env string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env)
}

func newLogger(out io.Writer, appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.AddHook(staticFields{"app": appName, "env": env})
	return logger
}

// staticFields stamps fixed fields on every entry without overriding
// fields set at the call site.
type staticFields logrus.Fields

func (h staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (h staticFields) Fire(e *logrus.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
