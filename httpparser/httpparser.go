// Package httpparser tokenizes the HTTP/1.x response head: the status line and the
// header section. It is stateless: every call parses the passed data from the very
// beginning, so the caller is expected to accumulate incoming bytes and retry with a
// longer buffer, once the previous attempt turned out to be incomplete. Nothing is copied,
// all the returned strings point directly into the passed data.
package httpparser

import (
	"bytes"
	"iter"

	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/wire/errors"
	"github.com/indigo-web/wire/http/headers"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
)

// Response is a tokenized response head.
type Response struct {
	Proto  proto.Proto
	Code   status.Code
	Reason string
	// Fields is the raw header section, excluding the terminating empty line. It is
	// guaranteed to be well-formed, so can be walked via Walk.
	Fields []byte
	// Consumed is the length of the whole head, including the terminating empty line.
	Consumed int
}

const versionPattern = "HTTP/x.x"

// Parse tokenizes the response head. If the data doesn't contain it completely yet, an
// empty response and complete=false are returned. Header fields are stored into hdrs, unless
// it is nil, in which case they are only validated. In both cases no more than maxHeaders
// fields are accepted.
func Parse(data []byte, hdrs *headers.Headers, maxHeaders int) (resp Response, complete bool, err error) {
	if hdrs != nil {
		hdrs.Clear()
	}

	protocol, complete, err := parseVersion(data)
	if !complete {
		return resp, false, err
	}

	pos := len(versionPattern)
	if pos >= len(data) {
		return resp, false, nil
	}

	if data[pos] != ' ' {
		return resp, false, errors.ErrBadStatusLine
	}

	pos++
	var code status.Code

	for end := pos + 3; pos < end; pos++ {
		if pos >= len(data) {
			return resp, false, nil
		}

		char := data[pos]
		if char < '0' || char > '9' {
			return resp, false, errors.ErrBadStatusLine
		}

		code = code*10 + status.Code(char-'0')
	}

	if pos >= len(data) {
		return resp, false, nil
	}

	var reason []byte

	switch data[pos] {
	case '\r', '\n':
	case ' ':
		pos++
		start := pos

		for ; ; pos++ {
			if pos >= len(data) {
				return resp, false, nil
			}

			if char := data[pos]; char == '\r' || char == '\n' {
				break
			} else if !isFieldChar(char) {
				return resp, false, errors.ErrBadStatusLine
			}
		}

		reason = data[start:pos]
	default:
		return resp, false, errors.ErrBadStatusLine
	}

	if pos, complete, err = lineEnd(data, pos, errors.ErrBadStatusLine); !complete {
		return resp, false, err
	}

	fieldsStart := pos
	count := 0

	for {
		if pos >= len(data) {
			return resp, false, nil
		}

		if char := data[pos]; char == '\r' || char == '\n' {
			fieldsEnd := pos
			if pos, complete, err = lineEnd(data, pos, errors.ErrBadHeader); !complete {
				return resp, false, err
			}

			return Response{
				Proto:    protocol,
				Code:     code,
				Reason:   uf.B2S(reason),
				Fields:   data[fieldsStart:fieldsEnd],
				Consumed: pos,
			}, true, nil
		}

		nameStart := pos

		for ; ; pos++ {
			if pos >= len(data) {
				return resp, false, nil
			}

			if char := data[pos]; char == ':' {
				break
			} else if !isTokenChar(char) {
				// also catches whitespaces before the colon and obsolete line folding
				return resp, false, errors.ErrBadHeader
			}
		}

		if pos == nameStart {
			return resp, false, errors.ErrBadHeader
		}

		name := data[nameStart:pos]
		pos++

		for pos < len(data) && (data[pos] == ' ' || data[pos] == '\t') {
			pos++
		}

		valueStart := pos

		for ; ; pos++ {
			if pos >= len(data) {
				return resp, false, nil
			}

			if char := data[pos]; char == '\r' || char == '\n' {
				break
			} else if !isFieldChar(char) {
				return resp, false, errors.ErrBadHeader
			}
		}

		value := trimSuffixSpaces(data[valueStart:pos])
		if pos, complete, err = lineEnd(data, pos, errors.ErrBadHeader); !complete {
			return resp, false, err
		}

		if count++; count > maxHeaders {
			return resp, false, errors.ErrTooManyHeaders
		}

		if hdrs != nil {
			if err = hdrs.Add(uf.B2S(name), uf.B2S(value)); err != nil {
				return resp, false, err
			}
		}
	}
}

// Walk iterates over the field lines of a header section, previously returned by Parse.
func Walk(fields []byte) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for len(fields) > 0 {
			var name, value string
			if name, value, fields = NextField(fields); !yield(name, value) {
				return
			}
		}
	}
}

// NextField cuts off the first field line of a header section, previously returned by Parse.
// Once the rest is empty, the section is exhausted.
func NextField(fields []byte) (name, value string, rest []byte) {
	line := fields
	if lf := bytes.IndexByte(fields, '\n'); lf != -1 {
		line, rest = fields[:lf], fields[lf+1:]
	}

	line = stripCR(line)
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return "", "", rest
	}

	return uf.B2S(line[:colon]), uf.B2S(trimSuffixSpaces(trimPrefixSpaces(line[colon+1:]))), rest
}

// parseVersion checks the protocol token byte by byte, so obvious garbage is rejected
// before the whole token arrives.
func parseVersion(data []byte) (proto.Proto, bool, error) {
	for i := 0; i < len(data) && i < len(versionPattern); i++ {
		char := data[i]

		switch versionPattern[i] {
		case 'x':
			if char < '0' || char > '9' {
				return proto.Unknown, false, errors.ErrBadStatusLine
			}
		default:
			if char != versionPattern[i] {
				return proto.Unknown, false, errors.ErrBadStatusLine
			}
		}
	}

	if len(data) < len(versionPattern) {
		return proto.Unknown, false, nil
	}

	protocol := proto.FromBytes(data[:len(versionPattern)])
	if !protocol.IsHTTP1() {
		return proto.Unknown, false, errors.ErrHTTPVersionNotSupported
	}

	return protocol, true, nil
}

// lineEnd expects data[pos] to be either CR or LF and returns the position right after
// the line terminator. Bare LF is tolerated.
func lineEnd(data []byte, pos int, bad error) (int, bool, error) {
	if data[pos] == '\n' {
		return pos + 1, true, nil
	}

	if pos+1 >= len(data) {
		return pos, false, nil
	}

	if data[pos+1] != '\n' {
		return pos, false, bad
	}

	return pos + 2, true, nil
}

func trimPrefixSpaces(b []byte) []byte {
	for i, char := range b {
		if char != ' ' && char != '\t' {
			return b[i:]
		}
	}

	return b[:0]
}

func trimSuffixSpaces(b []byte) []byte {
	for i := len(b); i > 0; i-- {
		if b[i-1] != ' ' && b[i-1] != '\t' {
			return b[:i]
		}
	}

	return b[:0]
}

func stripCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}

	return b
}

// isFieldChar permits HTAB, SP, VCHAR and obs-text.
func isFieldChar(c byte) bool {
	return c == '\t' || (c >= 0x20 && c != 0x7f)
}

func isTokenChar(c byte) bool {
	return tokenChars[c]
}

// tchar as defined by RFC 9110 5.6.2
var tokenChars = func() (table [256]bool) {
	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		table[c] = true
	}

	return table
}()
