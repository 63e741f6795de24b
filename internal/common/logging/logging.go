// Package logging provides component-tagged zerolog loggers for the
// contractgen tool. Output goes to stderr through a console writer so that
// generated-file paths printed on stdout stay machine-consumable.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const FieldComponent = "component"

// SetupGlobalLevel parses and applies the given level to all loggers.
func SetupGlobalLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

// SetLogSeverityFromEnv applies the LOG_LEVEL environment variable,
// defaulting to INFO. ParseLevel maps an unset variable to NoLevel without
// an error, which would suppress all output, so it is normalized here.
func SetLogSeverityFromEnv() {
	lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func makeComponentFormatter() zerolog.Formatter {
	bold := color.New(color.Bold)
	return func(c any) string {
		return bold.Sprintf("[%s]\t", c)
	}
}

// NewLogger returns a console logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return NewLoggerWithWriter(component, os.Stderr)
}

// NewLoggerWithWriter is NewLogger writing to the given sink; used by tests
// to capture output.
func NewLoggerWithWriter(component string, out io.Writer) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			FieldComponent,
			zerolog.MessageFieldName,
		},
		FieldsExclude:    []string{FieldComponent},
		FormatFieldValue: makeComponentFormatter(),
		NoColor:          color.NoColor,
	}
	return zerolog.New(consoleWriter).
		With().
		Str(FieldComponent, component).
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
