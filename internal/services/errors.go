package services

import (
	apperrors "bikedash/internal/errors"
)

// Session errors
var (
	// ErrNoDataset is returned by operations that need a loaded dataset.
	// It renders as 409 NO_DATASET.
	ErrNoDataset = apperrors.ErrNoDataset
)
