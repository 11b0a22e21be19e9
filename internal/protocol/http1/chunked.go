package http1

import (
	"github.com/indigo-web/wire/errors"
	"github.com/indigo-web/wire/internal/hexconv"
)

type chunkedState uint8

const (
	eChunkLength chunkedState = iota
	eChunkLengthWS
	eChunkExt
	eChunkLengthCR
	eChunkBody
	eChunkBodyDone
	eChunkBodyCR
	eChunkTrailer
	eChunkTrailerCR
	eChunkTrailerFieldLine
	eChunkEnded
)

// Dechunker decodes a body in chunked transfer encoding. The chunk boundaries may fall
// anywhere relatively to the pieces of input, so the state is kept between calls. Chunk
// extensions and trailer field lines are consumed and discarded.
type Dechunker struct {
	state        chunkedState
	lengthDigits uint8
	maxDigits    uint8
	chunkLength  uint64
}

// NewDechunker returns a decoder, rejecting chunk length lines longer than maxDigits hex
// digits (leading zeroes count.) maxDigits must not exceed 16.
func NewDechunker(maxDigits int) Dechunker {
	return Dechunker{
		state:     eChunkLength,
		maxDigits: uint8(maxDigits),
	}
}

// IsEnded reports whether the terminating zero-length chunk and the trailer section were
// completely consumed.
func (d *Dechunker) IsEnded() bool {
	return d.state == eChunkEnded
}

// Decode consumes a prefix of src and writes the decoded payload into dst, advancing as
// far as both the input and the room in dst allow. Framing bytes are consumed even when
// dst is full. Nothing past the end of the chunked body is ever consumed, so the rest of src
// is left to the caller.
//
// On error, used points at the malformed byte and produced counts the payload written into
// dst before it. The decoder must not be used after an error.
func (d *Dechunker) Decode(src, dst []byte) (used, produced int, err error) {
	data := src

	switch d.state {
	case eChunkLength:
		goto chunkLength
	case eChunkLengthWS:
		goto chunkLengthWS
	case eChunkExt:
		goto chunkExt
	case eChunkLengthCR:
		goto chunkLengthCR
	case eChunkBody:
		goto chunkBody
	case eChunkBodyDone:
		goto chunkBodyDone
	case eChunkBodyCR:
		goto chunkBodyCR
	case eChunkTrailer:
		goto trailer
	case eChunkTrailerCR:
		goto trailerCR
	case eChunkTrailerFieldLine:
		goto trailerFieldLine
	case eChunkEnded:
		return 0, 0, nil
	default:
		panic("BUG: dechunker: unknown state")
	}

chunkLength:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; char {
		case '\r', '\n', ';', ' ', '\t':
			if d.lengthDigits == 0 {
				return len(src) - len(data) + i, produced, errors.ErrBadChunk
			}

			data = data[i:]
			goto chunkLengthWS
		default:
			val := hexconv.Halfbyte[char]
			if val == 0xFF {
				return len(src) - len(data) + i, produced, errors.ErrBadChunk
			}

			if d.lengthDigits++; d.lengthDigits > d.maxDigits {
				return len(src) - len(data) + i, produced, errors.ErrBadChunk
			}

			d.chunkLength = (d.chunkLength << 4) | uint64(val)
		}
	}

	d.state = eChunkLength
	return len(src), produced, nil

chunkLengthWS:
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t':
		case ';':
			data = data[i+1:]
			goto chunkExt
		case '\r':
			data = data[i+1:]
			goto chunkLengthCR
		case '\n':
			data = data[i+1:]
			goto chunkLengthDone
		default:
			return len(src) - len(data) + i, produced, errors.ErrBadChunk
		}
	}

	d.state = eChunkLengthWS
	return len(src), produced, nil

chunkExt:
	// extensions aren't supported, therefore are skipped entirely.
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			data = data[i+1:]
			goto chunkLengthDone
		}
	}

	d.state = eChunkExt
	return len(src), produced, nil

chunkLengthCR:
	if len(data) == 0 {
		d.state = eChunkLengthCR
		return len(src), produced, nil
	}

	if data[0] != '\n' {
		return len(src) - len(data), produced, errors.ErrBadChunk
	}

	data = data[1:]

chunkLengthDone:
	d.lengthDigits = 0
	if d.chunkLength == 0 {
		goto trailer
	}

chunkBody:
	{
		n := min(d.chunkLength, uint64(len(data)), uint64(len(dst)-produced))
		produced += copy(dst[produced:], data[:n])
		data = data[n:]
		d.chunkLength -= n

		if d.chunkLength > 0 {
			// either input or output space is exhausted
			d.state = eChunkBody
			return len(src) - len(data), produced, nil
		}
	}

chunkBodyDone:
	if len(data) == 0 {
		d.state = eChunkBodyDone
		return len(src), produced, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto chunkBodyCR
	case '\n':
		data = data[1:]
		goto chunkLength
	default:
		return len(src) - len(data), produced, errors.ErrBadChunk
	}

chunkBodyCR:
	if len(data) == 0 {
		d.state = eChunkBodyCR
		return len(src), produced, nil
	}

	if data[0] != '\n' {
		return len(src) - len(data), produced, errors.ErrBadChunk
	}

	data = data[1:]
	goto chunkLength

trailer:
	if len(data) == 0 {
		d.state = eChunkTrailer
		return len(src), produced, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto trailerCR
	case '\n':
		d.state = eChunkEnded
		return len(src) - len(data) + 1, produced, nil
	default:
		goto trailerFieldLine
	}

trailerCR:
	if len(data) == 0 {
		d.state = eChunkTrailerCR
		return len(src), produced, nil
	}

	if data[0] != '\n' {
		return len(src) - len(data), produced, errors.ErrBadChunk
	}

	d.state = eChunkEnded
	return len(src) - len(data) + 1, produced, nil

trailerFieldLine:
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			data = data[i+1:]
			goto trailer
		}
	}

	d.state = eChunkTrailerFieldLine
	return len(src), produced, nil
}
