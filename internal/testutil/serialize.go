package testutil

import (
	"strconv"

	"github.com/indigo-web/wire/http/headers"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
)

type Response struct {
	Proto   proto.Proto
	Code    status.Code
	Reason  string
	Headers []headers.Header
	Body    string
}

// SerializeResponse renders the response in the wire format. The body is appended as is,
// so it must already be framed accordingly to the headers.
func SerializeResponse(response Response) string {
	var buff []byte

	buff = append(buff, response.Proto.String()...)
	buff = space(buff)
	buff = strconv.AppendUint(buff, uint64(response.Code), 10)

	if len(response.Reason) > 0 {
		buff = space(buff)
		buff = append(buff, response.Reason...)
	}

	buff = crlf(buff)

	for _, h := range response.Headers {
		buff = header(buff, h)
	}

	buff = crlf(buff)
	buff = append(buff, response.Body...)

	return string(buff)
}

// Chunked encodes the payload in chunked transfer encoding, using chunks of at most
// chunkSize bytes. Trailer fields are placed after the last chunk.
func Chunked(payload string, chunkSize int, trailer ...headers.Header) string {
	var buff []byte

	for len(payload) > 0 {
		chunk := payload[:min(chunkSize, len(payload))]
		payload = payload[len(chunk):]

		buff = strconv.AppendUint(buff, uint64(len(chunk)), 16)
		buff = crlf(buff)
		buff = append(buff, chunk...)
		buff = crlf(buff)
	}

	buff = append(buff, '0')
	buff = crlf(buff)

	for _, h := range trailer {
		buff = header(buff, h)
	}

	return string(crlf(buff))
}

// Scatter splits the data into parts of n bytes. The last one may be shorter.
func Scatter(data []byte, n int) (parts [][]byte) {
	for len(data) > 0 {
		end := min(n, len(data))
		parts = append(parts, data[:end])
		data = data[end:]
	}

	return parts
}

func space(b []byte) []byte {
	return append(b, ' ')
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}

func header(b []byte, h headers.Header) []byte {
	b = append(b, h.Name...)
	b = colonsp(b)
	b = append(b, h.Value...)

	return crlf(b)
}

func colonsp(b []byte) []byte {
	return append(b, ':', ' ')
}
