package summarize

import "errors"

var (
	// ErrSummarization indicates the endpoint could not be reached or answered with a non-2xx status.
	ErrSummarization = errors.New("summarization failed")
	// ErrUnexpectedResponseShape indicates a 2xx response that is not a non-empty list of summaries.
	ErrUnexpectedResponseShape = errors.New("unexpected summarization response shape")
	// ErrUnsupportedLanguage indicates no endpoint is configured for the language.
	ErrUnsupportedLanguage = errors.New("no summarization endpoint for language")
)
