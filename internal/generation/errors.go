package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when content generation fails for any
	// general reason.
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrIncompleteResponse is returned when one or more of the constituent
	// generations produced no parseable text. The aggregate is all-or-nothing,
	// so a single incomplete sub-response fails the whole call.
	ErrIncompleteResponse = errors.New("incomplete AI response")

	// ErrInvalidResponse is returned when the provider response cannot be
	// parsed against the requested schema.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider blocks the content due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrEmptyTranscript is returned when the transcript is missing or empty.
	ErrEmptyTranscript = errors.New("transcript cannot be empty")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrProviderUnavailable is returned when the generator has no usable
	// provider configuration, for example a missing API key.
	ErrProviderUnavailable = errors.New("content provider unavailable")
)
