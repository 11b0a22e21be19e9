// Package framing decides how the end of a response body is determined. The rules follow
// RFC 9112 6.3 (formerly RFC 7230 3.3.3 and RFC 2616 4.4), with the ambiguous cases rejected
// rather than resolved, as guessing there is exactly what request/response smuggling feeds on.
package framing

import (
	"iter"
	"strconv"
	"unicode/utf8"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/errors"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/internal/strutil"
)

type Kind uint8

const (
	// LengthDelimited bodies are exactly Length bytes long. Zero length is used as well when
	// the response has no body at all, but the connection stays usable.
	LengthDelimited Kind = iota + 1
	// Chunked bodies are in chunked transfer encoding.
	Chunked
	// CloseDelimited bodies end when the peer closes the connection.
	CloseDelimited
)

func (k Kind) String() string {
	switch k {
	case LengthDelimited:
		return "length-delimited"
	case Chunked:
		return "chunked"
	case CloseDelimited:
		return "close-delimited"
	default:
		return "unknown"
	}
}

// Mode is the body framing of a single response. Zero value means the framing isn't
// known yet.
type Mode struct {
	Kind Kind
	// Length is meaningful only for LengthDelimited.
	Length uint64
}

func Length(n uint64) Mode {
	return Mode{Kind: LengthDelimited, Length: n}
}

func Chunk() Mode {
	return Mode{Kind: Chunked}
}

func Close() Mode {
	return Mode{Kind: CloseDelimited}
}

// IsZero reports whether the response has no body for sure.
func (m Mode) IsZero() bool {
	return m.Kind == LengthDelimited && m.Length == 0
}

func (m Mode) String() string {
	if m.Kind == LengthDelimited {
		return m.Kind.String() + "(" + strconv.FormatUint(m.Length, 10) + ")"
	}

	return m.Kind.String()
}

// NoBody reports whether the response can't have a body regardless of its headers: all the
// responses to HEAD requests, as well as 1xx, 204 and 304 ones.
func NoBody(isHead bool, code status.Code) bool {
	return isHead || !code.HasBody()
}

// Resolve returns the body framing of a response. Headers are not even looked at, if the
// response can't have a body.
func Resolve(
	isHTTP10, isHead bool, code status.Code, fields iter.Seq2[string, string], policy config.Framing,
) (Mode, error) {
	if NoBody(isHead, code) {
		return Length(0), nil
	}

	r := NewResolver(policy)
	for name, value := range fields {
		if err := r.Observe(name, value); err != nil {
			return Mode{}, err
		}
	}

	return r.Mode(isHTTP10), nil
}

// Resolver accumulates the framing-relevant header fields one by one.
type Resolver struct {
	policy        config.Framing
	contentLength uint64
	hasLength     bool
	chunked       bool
}

func NewResolver(policy config.Framing) Resolver {
	return Resolver{policy: policy}
}

// Observe inspects a single header field. Fields other than Content-Length and
// Transfer-Encoding are ignored.
func (r *Resolver) Observe(name, value string) error {
	switch len(name) {
	case len("Content-Length"):
		if strcomp.EqualFold(name, "Content-Length") {
			return r.observeLength(value)
		}
	case len("Transfer-Encoding"):
		// once chunked is confirmed, further Transfer-Encoding fields change nothing.
		if !r.chunked && strcomp.EqualFold(name, "Transfer-Encoding") {
			if !utf8.ValidString(value) {
				return errors.ErrBadEncoding
			}

			r.chunked = HasToken(value, "chunked")
		}
	}

	return nil
}

func (r *Resolver) observeLength(value string) error {
	if r.policy.DuplicateContentLength != config.AllowIdentical {
		if r.hasLength {
			return errors.ErrDuplicateContentLength
		}

		length, err := parseLength(value)
		if err != nil {
			return err
		}

		r.contentLength, r.hasLength = length, true
		return nil
	}

	for more := true; more; {
		var token string
		token, value, more = strutil.CutToken(value)

		length, err := parseLength(token)
		if err != nil {
			return err
		}

		if r.hasLength && length != r.contentLength {
			return errors.ErrDuplicateContentLength
		}

		r.contentLength, r.hasLength = length, true
	}

	return nil
}

// Mode returns the framing, concluded from the observed fields. Chunked transfer encoding
// takes precedence over Content-Length, unless the peer speaks HTTP/1.0, which has no such
// thing as chunked encoding at all.
func (r Resolver) Mode(isHTTP10 bool) Mode {
	switch {
	case r.chunked && !isHTTP10:
		return Chunk()
	case r.hasLength:
		return Length(r.contentLength)
	default:
		return Close()
	}
}

// HasToken reports whether the comma-separated list contains the token, compared
// case-insensitively.
func HasToken(list, token string) bool {
	for more := true; more; {
		var elem string
		elem, list, more = strutil.CutToken(list)
		if strcomp.EqualFold(elem, token) {
			return true
		}
	}

	return false
}

// parseLength accepts only plain decimal numbers, with optional surrounding whitespaces.
// Signs, empty values and values overflowing uint64 are rejected.
func parseLength(value string) (length uint64, err error) {
	value = strutil.StripWS(value)
	if len(value) == 0 {
		return 0, errors.ErrBadContentLength
	}

	for i := 0; i < len(value); i++ {
		char := value[i]
		if char < '0' || char > '9' {
			return 0, errors.ErrBadContentLength
		}

		digit := uint64(char - '0')
		if length > (1<<64-1-digit)/10 {
			return 0, errors.ErrBadContentLength
		}

		length = length*10 + digit
	}

	return length, nil
}
