package config

import (
	"os"

	"go.uber.org/zap"
)

// Log is the process-wide structured logger. It is usable before InitLogger runs.
var Log = zap.NewNop()

func InitLogger(ginMode string) *zap.Logger {
	if ginMode == "debug" || os.Getenv("GIN_MODE") == "debug" {
		Log = zap.Must(zap.NewDevelopment())
	} else {
		Log = zap.Must(zap.NewProduction())
	}
	zap.ReplaceGlobals(Log)
	return Log
}
