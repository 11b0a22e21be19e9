package testutil

import (
	"testing"

	"github.com/indigo-web/wire/http/headers"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	"github.com/stretchr/testify/require"
)

func TestSerializeResponse(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		dumped := SerializeResponse(Response{
			Proto:  proto.HTTP11,
			Code:   status.OK,
			Reason: "OK",
			Headers: []headers.Header{
				{"hello", "world"},
				{"Content-Length", "13"},
			},
			Body: "Hello, world!",
		})
		want := "HTTP/1.1 200 OK\r\nhello: world\r\nContent-Length: 13\r\n\r\nHello, world!"
		require.Equal(t, want, dumped)
	})

	t.Run("no reason", func(t *testing.T) {
		dumped := SerializeResponse(Response{Proto: proto.HTTP10, Code: status.NotFound})
		require.Equal(t, "HTTP/1.0 404\r\n\r\n", dumped)
	})
}

func TestChunked(t *testing.T) {
	require.Equal(t, "0\r\n\r\n", Chunked("", 4))
	require.Equal(t, "4\r\nHell\r\n4\r\no, w\r\n4\r\norld\r\n1\r\n!\r\n0\r\n\r\n", Chunked("Hello, world!", 4))
	require.Equal(t, "d\r\nHello, world!\r\n0\r\nhello: world\r\n\r\n",
		Chunked("Hello, world!", 16, headers.Header{Name: "hello", Value: "world"}),
	)
}

func TestScatter(t *testing.T) {
	parts := Scatter([]byte("Hello, world!"), 5)
	require.Equal(t, [][]byte{[]byte("Hello"), []byte(", wor"), []byte("ld!")}, parts)
	require.Empty(t, Scatter(nil, 5))
}
