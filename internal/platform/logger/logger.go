// Package logger builds the process-wide structured logger.
package logger

import "go.uber.org/zap"

// New returns a development logger (console, debug level) or a production logger (JSON, info level).
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
