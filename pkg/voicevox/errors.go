package voicevox

import "errors"

var (
	// ErrEmptyText indicates there was nothing to synthesize.
	ErrEmptyText = errors.New("voicevox.empty_text")

	// ErrEngineUnavailable wraps failures reaching the engine.
	ErrEngineUnavailable = errors.New("voicevox.engine_unavailable")

	// ErrSynthesisFailed wraps failures of the audio_query/synthesis steps.
	ErrSynthesisFailed = errors.New("voicevox.synthesis_failed")

	// ErrInvalidSettings indicates settings outside the accepted ranges.
	ErrInvalidSettings = errors.New("voicevox.invalid_settings")

	// ErrPersistence wraps settings file read/write failures.
	ErrPersistence = errors.New("voicevox.persistence_failed")
)
