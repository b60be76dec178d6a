package config

import "go.uber.org/zap"

// NewLogger returns a JSON production logger, or a console development
// logger at debug level when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
