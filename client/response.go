// Package client receives HTTP/1.x responses out of plain byte slices. A response passes
// through three phases, each one being a distinct type exposing only what makes sense at
// that moment:
//
//	StatusReceiver -> BodyReceiver -> Ended
//
// Phases never read from the network and never allocate. The caller accumulates the
// received bytes and feeds them in; the returned Consumed counters tell how much of the
// input was used. Transitions move the response into the next phase, so the phase value
// transitioned from must not be used anymore: every method of it returns errors.ErrMoved.
//
// Phase values are not safe for concurrent use.
package client

import (
	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/errors"
	"github.com/indigo-web/wire/http/framing"
	"github.com/indigo-web/wire/http/headers"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
)

// Status is the parsed status line. Reason points directly into the input it was parsed
// from.
type Status struct {
	Proto  proto.Proto
	Code   status.Code
	Reason string
}

// Attempt is the result of a single StatusReceiver.TryRead call.
type Attempt struct {
	// Success is false if the input doesn't contain the whole response head yet.
	Success bool
	// Consumed is the length of the response head, 0 unless Success.
	Consumed int
	Status   Status
	// Headers is backed by the scratch storage passed to TryRead. Names and values point
	// directly into the input.
	Headers headers.Headers
}

// BodyPart is the result of a single BodyReceiver.ReadBody call.
type BodyPart struct {
	// Consumed is the number of input bytes used, framing bytes included.
	Consumed int
	// Data is the decoded payload, always a prefix of the destination buffer.
	Data []byte
	// Finished is set once the end of the body is reached. Never set for close-delimited
	// bodies, as their end is known only from the transport.
	Finished bool
}

// NewResponse starts receiving a response to a request with the method m. Passing
// method.Unknown is fine, it is treated the same as any method except HEAD. The config
// is normalized via config.Fill, nil results in defaults.
func NewResponse(cfg *config.Config, m method.Method) StatusReceiver {
	return StatusReceiver{
		call: newCall(cfg, m),
		live: true,
	}
}

// StatusReceiver awaits the status line and the header section.
type StatusReceiver struct {
	call call
	live bool
}

// TryRead parses the response head out of the input. The parsing is stateless: every call
// starts over from the beginning of the input, so after an unsuccessful attempt it is
// expected to be retried with the same bytes plus newly arrived ones. Header fields are
// stored into the scratch, which limits their number along with the config. Once the head
// is successfully read, further calls do nothing and return a zero Attempt.
func (s *StatusReceiver) TryRead(input []byte, scratch []headers.Header) (Attempt, error) {
	if !s.live {
		return Attempt{}, errors.ErrMoved
	}

	if s.call.resolved() {
		return Attempt{}, nil
	}

	hdrs := headers.New(scratch)
	resp, complete, err := s.call.tryRead(input, &hdrs)
	if err != nil || !complete {
		return Attempt{}, err
	}

	return Attempt{
		Success:  true,
		Consumed: resp.Consumed,
		Status: Status{
			Proto:  resp.Proto,
			Code:   resp.Code,
			Reason: resp.Reason,
		},
		Headers: hdrs,
	}, nil
}

// Resolved reports whether the response head was successfully read.
func (s *StatusReceiver) Resolved() bool {
	return s.live && s.call.resolved()
}

// Proto returns the protocol of the response, or proto.Unknown if the status line wasn't
// parsed yet. After a failed TryRead the protocol is known only if the head was well-formed,
// but its header fields couldn't be interpreted (e.g. a broken Content-Length). Malformed
// header fields leave it unknown.
func (s *StatusReceiver) Proto() proto.Proto {
	return s.call.proto
}

// Code returns the status code of the response, or 0 if the status line wasn't parsed yet.
// Errors keep it the same way as for Proto.
func (s *StatusReceiver) Code() status.Code {
	return s.call.code
}

// Proceed moves the response into the body receiving phase. It's fine to proceed without
// reading the head first, BodyReceiver.ReadBody skips it then.
func (s *StatusReceiver) Proceed() BodyReceiver {
	if !s.live {
		return BodyReceiver{}
	}

	s.live = false
	return BodyReceiver{call: s.call, live: true}
}

// BodyReceiver decodes the response body.
type BodyReceiver struct {
	call call
	live bool
}

// ReadBody decodes the body bytes from src into dst. If the response head wasn't read yet,
// it is parsed (its header fields are validated and interpreted, but not stored) and skipped
// first, so Consumed includes it. In that case an incomplete head results in a zero BodyPart,
// and the call must be retried with more input, the same way as with TryRead. Once the head
// is parsed, it stays consumed: if the body then fails, Consumed still reports the length of
// the head, so a retry must start right after it.
//
// If the body declares its length, src must not contain anything beyond it: excessive bytes
// fail with errors.ErrBodyOverrun. Chunked bodies never consume anything past their end.
func (b *BodyReceiver) ReadBody(src, dst []byte) (BodyPart, error) {
	if !b.live {
		return BodyPart{}, errors.ErrMoved
	}

	return b.call.readBody(src, dst)
}

// IsFinished reports whether the body was read to the end. Close-delimited bodies are never
// considered finished, see ConnectionClosed.
func (b *BodyReceiver) IsFinished() bool {
	return b.live && b.call.isFinished()
}

// Mode returns the framing of the body. It's zero, until the response head is read.
func (b *BodyReceiver) Mode() framing.Mode {
	return b.call.mode
}

func (b *BodyReceiver) Proto() proto.Proto {
	return b.call.proto
}

func (b *BodyReceiver) Code() status.Code {
	return b.call.code
}

// Finish completes the response. Bodies shorter than their Content-Length fail with
// errors.ErrBodyUnderrun, not read to the end ones with errors.ErrBodyNotFinished.
func (b *BodyReceiver) Finish() (Ended, error) {
	if !b.live {
		return Ended{}, errors.ErrMoved
	}

	if err := b.call.finish(); err != nil {
		return Ended{}, err
	}

	b.live = false
	return Ended{call: b.call}, nil
}

// ConnectionClosed completes the response, as the peer has closed the connection and no more
// input is going to arrive. This is the only way to complete a close-delimited body. For
// other bodies it fails in the same manner as Finish does.
func (b *BodyReceiver) ConnectionClosed() (Ended, error) {
	if !b.live {
		return Ended{}, errors.ErrMoved
	}

	if err := b.call.connectionClosed(); err != nil {
		return Ended{}, err
	}

	b.live = false
	return Ended{call: b.call}, nil
}

// Ended is a completely received response.
type Ended struct {
	call call
}

// Reusable reports whether the connection may be used for the next exchange. It may not,
// if the body was close-delimited, the peer has closed the connection or asked to close it
// via the Connection header. HTTP/1.0 connections are reusable only if explicitly kept alive.
func (e Ended) Reusable() bool {
	return e.call.resolved() && e.call.reusable()
}

func (e Ended) Proto() proto.Proto {
	return e.call.proto
}

func (e Ended) Code() status.Code {
	return e.call.code
}
