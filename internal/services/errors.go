package services

import "errors"

var (
	// ErrConfiguration means no usable Gemini credential or client exists.
	ErrConfiguration = errors.New("AI service misconfigured")
	// ErrStaging means the inbound video could not be written locally.
	ErrStaging = errors.New("file staging failed")
	// ErrUpload means the video could not be handed to the model service.
	ErrUpload = errors.New("video upload to AI service failed")
	// ErrGeneration means the model call itself failed.
	ErrGeneration = errors.New("AI generation failed")
	// ErrDecode means the model answered but not with the expected JSON.
	// Callers recover from it with a fallback record.
	ErrDecode = errors.New("failed to decode model response")
)
