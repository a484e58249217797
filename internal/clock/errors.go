package clock

import "errors"

var (
	// ErrNoProcesses is returned when a clock is built over an empty process set.
	ErrNoProcesses = errors.New("clock: no processes")
	// ErrEmptyProcessID is returned for a blank process identifier.
	ErrEmptyProcessID = errors.New("clock: empty process id")
	// ErrDuplicateProcess is returned when a process identifier appears twice.
	ErrDuplicateProcess = errors.New("clock: duplicate process")
	// ErrUnknownProcess is returned when the owner is not part of the process set.
	ErrUnknownProcess = errors.New("clock: unknown process")
	// ErrNegativeCounter is returned when decoding a counter below zero.
	ErrNegativeCounter = errors.New("clock: negative counter")
)
