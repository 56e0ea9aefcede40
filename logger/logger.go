package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init configures the application-wide logger. JSON output is used when
// APP_ENV=production so log collectors can parse the fields.
func Init() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)

	if os.Getenv("APP_ENV") == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		Log.SetLevel(logrus.DebugLevel)
	}
}

func init() {
	// Packages log during their own initialization in tests, before Init runs.
	Init()
}
