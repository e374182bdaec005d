package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// InitLoggers configures the diagnostic logger. Verbose forces debug
// output; otherwise level is parsed, falling back to info.
func InitLoggers(out io.Writer, level string, verbose bool) {
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)
}
