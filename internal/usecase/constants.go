package usecase

import "time"

const (
	// DefaultExportTimeout bounds a single snapshot sink write when the
	// caller's context has no deadline.
	DefaultExportTimeout = 30 * time.Second

	// ProgressInterval is how many records pass between debug progress logs.
	ProgressInterval = 100_000
)
