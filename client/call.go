package client

import (
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/errors"
	"github.com/indigo-web/wire/http/framing"
	"github.com/indigo-web/wire/http/headers"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	"github.com/indigo-web/wire/httpparser"
	"github.com/indigo-web/wire/internal/protocol/http1"
)

// call is everything known about a single response. It travels from one phase into
// another by value.
type call struct {
	cfg    *config.Config
	method method.Method
	proto  proto.Proto
	code   status.Code
	// mode is set exactly once, when the response head is parsed.
	mode         framing.Mode
	length       http1.LengthChecker
	dechunker    http1.Dechunker
	hasDechunker bool
	// received counts decoded body bytes.
	received  uint64
	readToEnd bool
	// connection persistence facts
	connClose, keepAlive, peerClosed bool
}

func newCall(cfg *config.Config, m method.Method) call {
	return call{
		cfg:    config.Fill(cfg),
		method: m,
	}
}

func (c *call) resolved() bool {
	return c.mode.Kind != 0
}

// resolve records the response head and decides on the body framing. The protocol and the
// code are stored first, so they are known even if the framing is broken.
func (c *call) resolve(resp httpparser.Response) error {
	c.proto, c.code = resp.Proto, resp.Code
	noBody := framing.NoBody(c.method == method.HEAD, c.code)
	resolver := framing.NewResolver(c.cfg.Framing)

	for fields := resp.Fields; len(fields) > 0; {
		var name, value string
		name, value, fields = httpparser.NextField(fields)
		c.observeConnection(name, value)

		if noBody {
			continue
		}

		if err := resolver.Observe(name, value); err != nil {
			return err
		}
	}

	mode := framing.Length(0)
	if !noBody {
		mode = resolver.Mode(c.proto == proto.HTTP10)
	}

	if mode.Kind == framing.LengthDelimited {
		if mode.Length > c.cfg.Body.MaxSize {
			return errors.ErrBodyTooLarge
		}

		c.length = http1.NewLengthChecker(mode.Length)
		c.readToEnd = mode.Length == 0
	}

	c.mode = mode
	return nil
}

func (c *call) observeConnection(name, value string) {
	if len(name) != len("Connection") || !strcomp.EqualFold(name, "Connection") {
		return
	}

	c.connClose = c.connClose || framing.HasToken(value, "close")
	c.keepAlive = c.keepAlive || framing.HasToken(value, "keep-alive")
}

// tryRead parses the response head. Incomplete head isn't an error, but results in
// complete=false.
func (c *call) tryRead(data []byte, hdrs *headers.Headers) (resp httpparser.Response, complete bool, err error) {
	resp, complete, err = httpparser.Parse(data, hdrs, c.cfg.Headers.MaxCount)
	if err != nil || !complete {
		return httpparser.Response{}, false, err
	}

	if err = c.resolve(resp); err != nil {
		return httpparser.Response{}, false, err
	}

	return resp, true, nil
}

// readBody reports the length of the head parsed in-call even if the body fails, as the call
// is resolved by then and the head must not be fed in again.
func (c *call) readBody(src, dst []byte) (BodyPart, error) {
	var head int

	if !c.resolved() {
		resp, complete, err := c.tryRead(src, nil)
		if err != nil || !complete {
			return BodyPart{}, err
		}

		head, src = resp.Consumed, src[resp.Consumed:]
	}

	if c.readToEnd {
		return BodyPart{Consumed: head, Finished: true}, nil
	}

	switch c.mode.Kind {
	case framing.LengthDelimited:
		n := min(len(src), len(dst))
		if err := c.length.Append(n, errors.ErrBodyOverrun); err != nil {
			return BodyPart{Consumed: head}, err
		}

		c.received += uint64(n)
		c.readToEnd = c.length.Complete()

		return BodyPart{
			Consumed: head + copy(dst, src[:n]),
			Data:     dst[:n],
			Finished: c.readToEnd,
		}, nil
	case framing.Chunked:
		if !c.hasDechunker {
			c.dechunker = http1.NewDechunker(c.cfg.Chunked.MaxLengthDigits)
			c.hasDechunker = true
		}

		used, produced, err := c.dechunker.Decode(src, dst)
		if err != nil {
			return BodyPart{Consumed: head}, err
		}

		if err = c.account(produced); err != nil {
			return BodyPart{Consumed: head}, err
		}

		c.readToEnd = c.dechunker.IsEnded()

		return BodyPart{
			Consumed: head + used,
			Data:     dst[:produced],
			Finished: c.readToEnd,
		}, nil
	case framing.CloseDelimited:
		n := min(len(src), len(dst))
		if err := c.account(n); err != nil {
			return BodyPart{Consumed: head}, err
		}

		return BodyPart{
			Consumed: head + copy(dst, src[:n]),
			Data:     dst[:n],
		}, nil
	default:
		panic("BUG: response body: unknown framing mode")
	}
}

// account checks the body size limit. Content-Length is checked against it in advance, so
// only bodies of unknown length end up here.
func (c *call) account(n int) error {
	if uint64(n) > c.cfg.Body.MaxSize-c.received {
		return errors.ErrBodyTooLarge
	}

	c.received += uint64(n)
	return nil
}

func (c *call) isFinished() bool {
	return c.mode.Kind != framing.CloseDelimited && c.readToEnd
}

func (c *call) finish() error {
	if c.mode.Kind == framing.LengthDelimited {
		if err := c.length.AssertExpected(errors.ErrBodyUnderrun); err != nil {
			return err
		}
	}

	if !c.isFinished() {
		return errors.ErrBodyNotFinished
	}

	return nil
}

// connectionClosed completes the body as no more input is going to arrive.
func (c *call) connectionClosed() error {
	switch c.mode.Kind {
	case framing.CloseDelimited:
		c.readToEnd = true
	case framing.LengthDelimited:
		if err := c.length.AssertExpected(errors.ErrBodyUnderrun); err != nil {
			return err
		}
	case framing.Chunked:
		if !c.readToEnd {
			return errors.ErrBodyNotFinished
		}
	default:
		return errors.ErrBodyNotFinished
	}

	c.peerClosed = true
	return nil
}

// reusable reports whether the connection may carry the next exchange.
func (c *call) reusable() bool {
	switch {
	case c.peerClosed, c.connClose, c.mode.Kind == framing.CloseDelimited:
		return false
	case c.proto == proto.HTTP10:
		return c.keepAlive
	default:
		return true
	}
}
