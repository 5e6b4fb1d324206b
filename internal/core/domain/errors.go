package domain

import "errors"

var (
	ErrStreamNotFound     = errors.New("stream not found")
	ErrStreamExists       = errors.New("stream already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrApplicationRunning = errors.New("application already running")
	ErrApplicationStopped = errors.New("application stopped")
)
