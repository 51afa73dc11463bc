package state

import (
	"time"

	"go.uber.org/zap"

	"csseng/intern"
)

// newLocalEnv creates a new LocalEnv instance with default values. Log stays
// nil until configuration is loaded.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		Strings: intern.NewTable(),
		start:   time.Now(),
	}
}

func (e *LocalEnv) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
