// Package store keeps a journal of finished runs.
package store

import (
	"time"
)

// Status is how a run ended.
type Status string

const (
	StatusFinished  Status = "finished"
	StatusHalted    Status = "halted"
	StatusAborted   Status = "aborted"
	StatusCancelled Status = "cancelled"
)

// FaultEntry is one fault reported during a run.
type FaultEntry struct {
	Kind    string `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
	PC      int    `cbor:"3,keyasint"`
	Offset  int    `cbor:"4,keyasint"`
}

// Record describes one run. It never holds program text or tape contents.
type Record struct {
	ID          string
	Name        string // file path, preset name or "-e"
	Digest      string // hex SHA-256 of the instruction symbols
	Status      Status
	Steps       int
	OutputBytes int
	Faults      []FaultEntry
	StartedAt   time.Time
	Duration    time.Duration
}

// Store is the interface for run journals.
type Store interface {
	// Put appends a record. An empty ID is filled in.
	Put(r *Record) error
	// Recent returns up to limit records, newest first. limit <= 0 means all.
	Recent(limit int) ([]Record, error)
	// Close releases resources.
	Close() error
}
