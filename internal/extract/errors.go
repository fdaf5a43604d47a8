package extract

import "errors"

var (
	// ErrDecode indicates the document is not a well-formed document of its format.
	ErrDecode = errors.New("document decode failed")
	// ErrUnsupportedType indicates no extractor is registered for the document's content type.
	ErrUnsupportedType = errors.New("unsupported document type")
)
