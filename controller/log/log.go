package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Config controls which levels a logger emits.
type Config struct {
	HideDebug bool
	HideWarn  bool
}

// Logger is a simple leveled logger.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	config Config
}

// Default is the logger used by the package-level functions.
var Default = New(os.Stderr, nil)

// New creates a logger that writes to w. A nil config shows all levels.
func New(w io.Writer, config *Config) *Logger {
	l := &Logger{w: w}
	if config != nil {
		l.config = *config
	}
	return l
}

func (l *Logger) output(level string, s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s [%s] %s\n", time.Now().Format("2006/01/02 15:04:05"), level, s)
}

// Debugf writes a debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.config.HideDebug {
		return
	}
	l.output("DEBU", fmt.Sprintf(format, args...))
}

// Debug writes a debug message.
func (l *Logger) Debug(args ...interface{}) {
	if l.config.HideDebug {
		return
	}
	l.output("DEBU", fmt.Sprint(args...))
}

// Infof writes an info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.output("INFO", fmt.Sprintf(format, args...))
}

// Info writes an info message.
func (l *Logger) Info(args ...interface{}) {
	l.output("INFO", fmt.Sprint(args...))
}

// Warnf writes a warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.config.HideWarn {
		return
	}
	l.output("WARN", fmt.Sprintf(format, args...))
}

// Warn writes a warning message.
func (l *Logger) Warn(args ...interface{}) {
	if l.config.HideWarn {
		return
	}
	l.output("WARN", fmt.Sprint(args...))
}

// Errorf writes an error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.output("ERRO", fmt.Sprintf(format, args...))
}

// Error writes an error message.
func (l *Logger) Error(args ...interface{}) {
	l.output("ERRO", fmt.Sprint(args...))
}

// Fatalf writes a fatal message and exits the process.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.output("FATA", fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Fatal writes a fatal message and exits the process.
func (l *Logger) Fatal(args ...interface{}) {
	l.output("FATA", fmt.Sprint(args...))
	os.Exit(1)
}

// Printf writes a message regardless of level configuration.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.output("INFO", fmt.Sprintf(format, args...))
}

// Debugf writes a debug message to the default logger.
func Debugf(format string, args ...interface{}) { Default.Debugf(format, args...) }

// Debug writes a debug message to the default logger.
func Debug(args ...interface{}) { Default.Debug(args...) }

// Infof writes an info message to the default logger.
func Infof(format string, args ...interface{}) { Default.Infof(format, args...) }

// Info writes an info message to the default logger.
func Info(args ...interface{}) { Default.Info(args...) }

// Warnf writes a warning message to the default logger.
func Warnf(format string, args ...interface{}) { Default.Warnf(format, args...) }

// Warn writes a warning message to the default logger.
func Warn(args ...interface{}) { Default.Warn(args...) }

// Errorf writes an error message to the default logger.
func Errorf(format string, args ...interface{}) { Default.Errorf(format, args...) }

// Error writes an error message to the default logger.
func Error(args ...interface{}) { Default.Error(args...) }

// Fatalf writes a fatal message to the default logger and exits.
func Fatalf(format string, args ...interface{}) { Default.Fatalf(format, args...) }

// Fatal writes a fatal message to the default logger and exits.
func Fatal(args ...interface{}) { Default.Fatal(args...) }

// Printf writes a message to the default logger.
func Printf(format string, args ...interface{}) { Default.Printf(format, args...) }
