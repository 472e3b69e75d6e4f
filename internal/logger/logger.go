package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the process-wide logger. Debug level is enabled via the
// DEBUG environment variable.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if os.Getenv("DEBUG") == "true" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
