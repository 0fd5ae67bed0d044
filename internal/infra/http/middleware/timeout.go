package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
)

// Timeout gives every request a deadline. A handler that has not started
// its response by then is answered with a 504 and its later writes fail;
// one that has started is left to finish.
// A panic in the handler is re-raised on the serving goroutine so Recovery
// still sees it. Zero or less disables the deadline.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			gw := &guardedWriter{ResponseWriter: w}
			result := make(chan any, 1)
			go func() {
				var p any
				defer func() {
					if rec := recover(); rec != nil {
						p = rec
					}
					result <- p
				}()
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case p := <-result:
				if p != nil {
					panic(p)
				}
			case <-ctx.Done():
				if gw.expire() {
					apierror.Timeout().WriteJSONWithRequestID(w, GetRequestID(r.Context()))
					return
				}
				// The handler owns the response; let it finish.
				if p := <-result; p != nil {
					panic(p)
				}
			}
		})
	}
}

type writerState int

const (
	stateIdle writerState = iota
	stateWriting
	stateExpired
)

// guardedWriter lets either the handler or the deadline own the response,
// whichever comes first.
type guardedWriter struct {
	http.ResponseWriter
	mu    sync.Mutex
	state writerState
}

// expire claims the response for the deadline. It reports false when the
// handler already started writing.
func (g *guardedWriter) expire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != stateIdle {
		return false
	}
	g.state = stateExpired
	return true
}

func (g *guardedWriter) claim() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == stateExpired {
		return false
	}
	g.state = stateWriting
	return true
}

func (g *guardedWriter) WriteHeader(code int) {
	if g.claim() {
		g.ResponseWriter.WriteHeader(code)
	}
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	if !g.claim() {
		return 0, http.ErrHandlerTimeout
	}
	return g.ResponseWriter.Write(b)
}
