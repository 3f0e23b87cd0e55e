package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func Init(level string, jsonFormat bool) {
	log.SetOutput(os.Stdout)

	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}

func Info(msg string, keysAndValues ...any) {
	log.WithFields(toFields(keysAndValues)).Info(msg)
}

func Warn(msg string, keysAndValues ...any) {
	log.WithFields(toFields(keysAndValues)).Warn(msg)
}

func Error(msg string, keysAndValues ...any) {
	log.WithFields(toFields(keysAndValues)).Error(msg)
}

func Debug(msg string, keysAndValues ...any) {
	log.WithFields(toFields(keysAndValues)).Debug(msg)
}

func Fatal(msg string, keysAndValues ...any) {
	log.WithFields(toFields(keysAndValues)).Fatal(msg)
}

// toFields converts variadic key/value pairs into logrus fields. A single
// trailing value (commonly an error) is stored under "error".
func toFields(keysAndValues []any) logrus.Fields {
	fields := logrus.Fields{}

	if len(keysAndValues) == 1 {
		fields["error"] = keysAndValues[0]
		return fields
	}

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}

	return fields
}
