package analysis

import "errors"

// ErrEmptySelection reports an export or measurement request with zero
// curated peaks.
var ErrEmptySelection = errors.New("no curated peaks selected")

// ErrNoRecording reports an operation that needs a loaded recording.
var ErrNoRecording = errors.New("no recording loaded")
