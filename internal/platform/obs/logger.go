package obs

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var logLevels = map[string]logrus.Level{
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
}

// SetupLogger configures the global logrus logger.
func SetupLogger(level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	lvl, ok := logLevels[level]
	if !ok {
		return fmt.Errorf("setup logger: invalid log level %q", level)
	}
	logrus.SetLevel(lvl)

	return nil
}
