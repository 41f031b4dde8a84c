package summarize

import "errors"

var (
	// ErrEmptyInput is returned when the submitted content is empty or
	// whitespace only.
	ErrEmptyInput = errors.New("empty input")

	// ErrInputTooLarge is returned when the submitted content exceeds the
	// configured size ceiling.
	ErrInputTooLarge = errors.New("input too large")

	// ErrUnsupportedKind is returned for an input kind the service does not
	// know how to prompt for.
	ErrUnsupportedKind = errors.New("unsupported input kind")

	// ErrInvalidYouTubeLink is returned when a youtube input is not a
	// recognizable YouTube watch URL.
	ErrInvalidYouTubeLink = errors.New("invalid youtube link")

	// ErrCompleterUnavailable is returned when the AI endpoint cannot be
	// reached or answers with a failure status.
	ErrCompleterUnavailable = errors.New("completer unavailable")

	// ErrNotFound is returned when a requested summary does not exist for
	// the given identity.
	ErrNotFound = errors.New("summary not found")
)
