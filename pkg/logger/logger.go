package logger

import (
	"go.uber.org/zap"
)

// New builds the process-wide logger. Production deployments get JSON
// output, everything else the development console encoder.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
