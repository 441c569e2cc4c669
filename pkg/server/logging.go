package server

import (
	"io"
	"log"
	"os"
)

// Package-level loggers. errorLog always writes; debugLog is discarded
// unless debug logging is enabled.
var (
	errorLog = log.New(os.Stderr, "ERROR: ", log.LstdFlags)
	debugLog = log.New(io.Discard, "DEBUG: ", log.LstdFlags)
)

// EnableDebugLogging turns on debug output for the server package.
func EnableDebugLogging() {
	debugLog = log.New(os.Stderr, "DEBUG: ", log.LstdFlags|log.Lmicroseconds)
}
