package framing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/errors"
	"github.com/indigo-web/wire/http/headers"
	"github.com/indigo-web/wire/http/proto"
	"github.com/indigo-web/wire/http/status"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

type vector struct {
	Name    string      `json:"name"`
	Proto   string      `json:"proto"`
	Head    bool        `json:"head"`
	Code    status.Code `json:"code"`
	Policy  string      `json:"policy"`
	Headers [][2]string `json:"headers"`
	Want    *struct {
		Kind   string `json:"kind"`
		Length uint64 `json:"length"`
	} `json:"want"`
	Error string `json:"error"`
}

var vectorErrors = map[string]error{
	"bad-content-length":       errors.ErrBadContentLength,
	"duplicate-content-length": errors.ErrDuplicateContentLength,
	"bad-encoding":             errors.ErrBadEncoding,
}

func loadVectors(t *testing.T) []vector {
	data, err := os.ReadFile(filepath.Join("testdata", "vectors.json"))
	require.NoError(t, err)

	var vectors []vector
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &vectors))
	require.NotEmpty(t, vectors)

	return vectors
}

func policyOf(name string) config.Framing {
	policy := config.Default().Framing
	if name == "allow-identical" {
		policy.DuplicateContentLength = config.AllowIdentical
	}

	return policy
}

func fieldsOf(pairs [][2]string) headers.Headers {
	hdrs := headers.New(make([]headers.Header, len(pairs)))
	for _, pair := range pairs {
		_ = hdrs.Add(pair[0], pair[1])
	}

	return hdrs
}

func TestVectors(t *testing.T) {
	for _, v := range loadVectors(t) {
		t.Run(v.Name, func(t *testing.T) {
			isHTTP10 := proto.FromBytes([]byte(v.Proto)) == proto.HTTP10
			hdrs := fieldsOf(v.Headers)

			mode, err := Resolve(isHTTP10, v.Head, v.Code, hdrs.Iter(), policyOf(v.Policy))
			if v.Error != "" {
				want, found := vectorErrors[v.Error]
				require.True(t, found, "unknown error in vector: %s", v.Error)
				require.ErrorIs(t, err, want)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, v.Want)
			require.Equal(t, v.Want.Kind, mode.Kind.String())
			require.Equal(t, v.Want.Length, mode.Length)
		})
	}
}

func TestResolve(t *testing.T) {
	policy := config.Default().Framing

	t.Run("no body statuses skip headers", func(t *testing.T) {
		for _, code := range []status.Code{100, 101, 103, 204, 304} {
			hdrs := fieldsOf([][2]string{{"Content-Length", "garbage"}})
			mode, err := Resolve(false, false, code, hdrs.Iter(), policy)
			require.NoError(t, err, code)
			require.Equal(t, Length(0), mode, code)
			require.True(t, mode.IsZero())
		}
	})

	t.Run("maximal content length", func(t *testing.T) {
		hdrs := fieldsOf([][2]string{{"Content-Length", "18446744073709551615"}})
		mode, err := Resolve(false, false, status.OK, hdrs.Iter(), policy)
		require.NoError(t, err)
		require.Equal(t, Length(1<<64-1), mode)
	})

	t.Run("invalid UTF-8 in transfer encoding", func(t *testing.T) {
		hdrs := fieldsOf([][2]string{{"Transfer-Encoding", "chunk\xffed"}})
		_, err := Resolve(false, false, status.OK, hdrs.Iter(), policy)
		require.ErrorIs(t, err, errors.ErrBadEncoding)
	})

	t.Run("transfer encoding isn't inspected after chunked", func(t *testing.T) {
		hdrs := fieldsOf([][2]string{
			{"Transfer-Encoding", "chunked"},
			{"Transfer-Encoding", "\xff"},
		})
		mode, err := Resolve(false, false, status.OK, hdrs.Iter(), policy)
		require.NoError(t, err)
		require.Equal(t, Chunk(), mode)
	})

	t.Run("resolution stops at the first error", func(t *testing.T) {
		var seen []string
		fields := func(yield func(string, string) bool) {
			for _, pair := range [][2]string{
				{"Content-Length", "1"},
				{"Content-Length", "2"},
				{"Server", "indigo"},
			} {
				seen = append(seen, pair[0])
				if !yield(pair[0], pair[1]) {
					return
				}
			}
		}

		_, err := Resolve(false, false, status.OK, fields, policy)
		require.ErrorIs(t, err, errors.ErrDuplicateContentLength)
		require.Equal(t, []string{"Content-Length", "Content-Length"}, seen)
	})
}

func TestResolver(t *testing.T) {
	t.Run("incremental matches whole", func(t *testing.T) {
		fields := [][2]string{
			{"Date", "today"},
			{"Content-Length", "15"},
			{"Transfer-Encoding", "gzip"},
		}

		r := NewResolver(config.Default().Framing)
		for _, field := range fields {
			require.NoError(t, r.Observe(field[0], field[1]))
		}

		hdrs := fieldsOf(fields)
		whole, err := Resolve(false, false, status.OK, hdrs.Iter(), config.Default().Framing)
		require.NoError(t, err)
		require.Equal(t, whole, r.Mode(false))
		require.Equal(t, Length(15), r.Mode(false))
	})

	t.Run("nothing observed", func(t *testing.T) {
		r := NewResolver(config.Default().Framing)
		require.Equal(t, Close(), r.Mode(false))
		require.Equal(t, Close(), r.Mode(true))
	})

	t.Run("HTTP/1.0 decides late", func(t *testing.T) {
		r := NewResolver(config.Default().Framing)
		require.NoError(t, r.Observe("Transfer-Encoding", "chunked"))
		require.Equal(t, Chunk(), r.Mode(false))
		require.Equal(t, Close(), r.Mode(true))
	})
}

func TestMode(t *testing.T) {
	require.Equal(t, "length-delimited(42)", Length(42).String())
	require.Equal(t, "chunked", Chunk().String())
	require.Equal(t, "close-delimited", Close().String())
	require.Equal(t, "unknown", Mode{}.String())
	require.False(t, Length(1).IsZero())
	require.False(t, Close().IsZero())
}

func TestNoBody(t *testing.T) {
	require.True(t, NoBody(true, status.OK))
	require.True(t, NoBody(false, status.NotModified))
	require.True(t, NoBody(false, status.Continue))
	require.False(t, NoBody(false, status.OK))
	require.False(t, NoBody(false, status.NotFound))
}

func BenchmarkResolve(b *testing.B) {
	hdrs := fieldsOf([][2]string{
		{"Content-Type", "text/html"},
		{"Server", "indigo"},
		{"Transfer-Encoding", "gzip, chunked"},
		{"Content-Length", "1024"},
	})
	policy := config.Default().Framing
	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		_, _ = Resolve(false, false, status.OK, hdrs.Iter(), policy)
	}
}
