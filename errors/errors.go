package errors

import (
	"errors"
)

var (
	ErrBadStatusLine           = errors.New("malformed status line")
	ErrHTTPVersionNotSupported = errors.New("HTTP version not supported")
	ErrBadHeader               = errors.New("malformed header field")
	ErrTooManyHeaders          = errors.New("too many headers")

	ErrDuplicateContentLength = errors.New("duplicate Content-Length headers")
	ErrBadContentLength       = errors.New("Content-Length value is not a valid number")
	ErrBadEncoding            = errors.New("Transfer-Encoding value is not valid UTF-8")

	ErrBadChunk        = errors.New("malformed chunk-encoded data")
	ErrBodyOverrun     = errors.New("received more body bytes than Content-Length declares")
	ErrBodyUnderrun    = errors.New("received less body bytes than Content-Length declares")
	ErrBodyNotFinished = errors.New("body is not read to the end")
	ErrBodyTooLarge    = errors.New("response body is too large")

	// ErrMoved is returned by a response phase, which was already consumed by a transition
	// into the next one.
	ErrMoved = errors.New("response is used after the phase transition")
)
