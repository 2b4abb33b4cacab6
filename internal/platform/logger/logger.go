// Package logger provides structured logging for the game server.
// Every state transition the engine commits should be traceable through this.
package logger

import (
	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Development mode switches to the
// human-readable console encoder.
func New(development bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if development {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}
