package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level LogLevel) {
	l.level.SetLevel(zapLevels[level])
}

func (l *Logger) log(level zapcore.Level, component, message string, args ...interface{}) {
	if !l.level.Enabled(level) {
		return
	}

	formattedMsg := message
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(message, args...)
	}

	if component != "" {
		l.base.Log(level, formattedMsg, zap.String("component", component))
	} else {
		l.base.Log(level, formattedMsg)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...interface{}) {
	l.log(zapcore.DebugLevel, component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...interface{}) {
	l.log(zapcore.InfoLevel, component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...interface{}) {
	l.log(zapcore.WarnLevel, component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...interface{}) {
	l.log(zapcore.ErrorLevel, component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...interface{}) {
	l.base.Fatal(fmt.Sprintf(message, args...), zap.String("component", component))
}
