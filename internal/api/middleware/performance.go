package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// minGzipSize is the smallest body worth compressing
const minGzipSize = 1024

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, 5)
		return gz
	},
}

// bufferedResponse holds a handler's output until the middleware decides
// how to send it
type bufferedResponse struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), statusCode: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header         { return b.header }
func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }
func (b *bufferedResponse) WriteHeader(statusCode int)  { b.statusCode = statusCode }

// ETagCompression buffers GET and HEAD responses. Successful cacheable
// responses get a content hash ETag and answer If-None-Match with 304.
// Bodies of at least minGzipSize are gzipped for clients that accept it.
func ETagCompression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || isEventStream(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		buf := newBufferedResponse()
		next.ServeHTTP(buf, r)

		dst := w.Header()
		for k, v := range buf.header {
			dst[k] = v
		}
		body := buf.body.Bytes()

		if buf.statusCode == http.StatusOK && dst.Get("Cache-Control") != "no-store" {
			hash := sha256.Sum256(body)
			etag := `"` + hex.EncodeToString(hash[:16]) + `"`
			dst.Set("ETag", etag)
			if r.Header.Get("If-None-Match") == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		dst.Add("Vary", "Accept-Encoding")
		if len(body) < minGzipSize || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			dst.Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(buf.statusCode)
			w.Write(body)
			return
		}

		dst.Set("Content-Encoding", "gzip")
		dst.Del("Content-Length")
		w.WriteHeader(buf.statusCode)

		gz := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gz)
		gz.Reset(w)
		gz.Write(body)
		gz.Close()
	})
}

// CacheControl sets client caching per route. Anything that depends on
// live bookings must not be stored.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case r.Method != http.MethodGet && r.Method != http.MethodHead:
			w.Header().Set("Cache-Control", "no-store")
		case strings.HasSuffix(path, "/availability") || strings.HasSuffix(path, "/bookings") || isEventStream(path):
			w.Header().Set("Cache-Control", "no-store")
		case strings.HasPrefix(path, "/api/recommendations"):
			w.Header().Set("Cache-Control", "private, max-age=60")
		case path == "/api/salons/search" || path == "/api/salons/suggest":
			w.Header().Set("Cache-Control", "public, max-age=120, must-revalidate")
		case strings.HasPrefix(path, "/api/salons"):
			w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
		default:
			w.Header().Set("Cache-Control", "private, no-cache, must-revalidate")
		}

		next.ServeHTTP(w, r)
	})
}

// isEventStream reports whether path is a Server-Sent Events stream. Streams
// are written incrementally and must never be buffered or stored.
func isEventStream(path string) bool {
	return strings.HasSuffix(path, "/events")
}

// ResponseOptimization applies CacheControl then ETagCompression
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(ETagCompression(next))
}
