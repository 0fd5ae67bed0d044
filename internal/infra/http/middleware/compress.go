package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressibleTypes are the response types worth compressing.
var compressibleTypes = []string{
	"text/html",
	"text/csv",
	"text/css",
	"text/javascript",
	"application/javascript",
	"application/json",
}

// Compress gzips pages, CSV exports and assets of at least minSize bytes
// for clients that accept it.
func Compress(minSize int) (func(http.Handler) http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(minSize),
		gzhttp.ContentTypes(compressibleTypes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
