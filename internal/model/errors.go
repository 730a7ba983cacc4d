package model

import "errors"

// Error taxonomy. Callers wrap these with fmt.Errorf("...: %w", ErrX) and
// classify with errors.Is.
var (
	// ErrLoad: the artifact is missing, unreadable or rejected by the runtime.
	// Fatal to that model, never to the batch.
	ErrLoad = errors.New("model load failed")
	// ErrDecode: a media file could not be decoded.
	ErrDecode = errors.New("media decode failed")
	// ErrShape: a synthetic generator cannot produce data for the requested rank.
	ErrShape = errors.New("unsupported tensor shape")
	// ErrUnsupportedShape: a preprocessing pipeline does not handle the target rank.
	ErrUnsupportedShape = errors.New("unsupported target shape")
	// ErrInference: the runtime failed to set an input, invoke or read an output.
	ErrInference = errors.New("inference failed")
	// ErrIO: a report, summary or samples directory could not be read or written.
	ErrIO = errors.New("i/o failed")
	// ErrMemoryUnavailable: the host cannot report process memory.
	ErrMemoryUnavailable = errors.New("process memory not available")
)
