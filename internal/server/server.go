// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
)

// Options configures the preview server.
type Options struct {
	Port int
	// Dir is the built site that gets served.
	Dir string
	// WatchPaths are the directories (watched recursively) and files whose
	// changes trigger a rebuild. Missing paths are skipped.
	WatchPaths []string
	// Ignore lists directories whose events never trigger a rebuild.
	Ignore []string
	// LiveReload injects a script into HTML pages that reloads them after
	// each successful rebuild.
	LiveReload bool
	// Build rebuilds the site into Dir.
	Build  func() error
	Logger *slog.Logger
}

const (
	debounceDelay   = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Run builds the site once, then serves Dir and rebuilds on every change
// until ctx is cancelled. A failing initial build aborts; later failures
// are logged and the previous output keeps being served.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := opts.Build(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, "initial build failed").Build()
	}

	w, err := newWatcher(opts.WatchPaths, opts.Ignore, logger)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "could not create file watcher").Build()
	}
	defer func() { _ = w.Close() }()

	var hub *Hub
	if opts.LiveReload {
		hub = newHub(logger)
	}

	rebuilds := make(chan struct{}, 1)
	go w.run(ctx, newDebouncer(debounceDelay, rebuilds).trigger)
	go rebuildLoop(ctx, rebuilds, opts.Build, hub, logger)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(opts.Port),
		Handler:           newHandler(opts.Dir, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("Serving site",
		slog.String("url", fmt.Sprintf("http://localhost:%d/", opts.Port)),
		logfields.Port(opts.Port),
		logfields.Path(opts.Dir),
		slog.Bool("live_reload", opts.LiveReload))

	select {
	case <-ctx.Done():
		logger.Info("Shutting down preview server")
		if hub != nil {
			hub.closeAll()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "preview server failed").
			WithContext("port", opts.Port).Build()
	}
}

// rebuildLoop runs one build per request. Requests arriving during a build
// coalesce into a single follow-up build.
func rebuildLoop(ctx context.Context, reqs <-chan struct{}, build func() error, hub *Hub, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reqs:
			start := time.Now()
			if err := build(); err != nil {
				logger.Warn("Rebuild failed", logfields.Error(err))
				continue
			}
			logger.Info("Site rebuilt", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
			if hub != nil {
				hub.broadcast(reloadMessage)
			}
		}
	}
}

func newHandler(dir string, hub *Hub) http.Handler {
	files := http.FileServer(http.Dir(dir))
	mux := http.NewServeMux()
	if hub != nil {
		mux.Handle("/ws", hub)
		mux.Handle("/", liveReloadWrapper(files))
	} else {
		mux.Handle("/", noCache(files))
	}
	return mux
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// liveReloadWrapper appends the reload script before </body> of successful
// HTML responses.
func liveReloadWrapper(next http.Handler) http.Handler {
	return noCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".html") && !strings.HasSuffix(r.URL.Path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter()
		next.ServeHTTP(iw, r)

		for key, values := range iw.header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		body := iw.body.Bytes()
		if iw.statusCode == http.StatusOK {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		}
		w.WriteHeader(iw.statusCode)
		_, _ = w.Write(body)
	}))
}

// interceptingWriter buffers a response so it can be rewritten.
type interceptingWriter struct {
	body       bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter() *interceptingWriter {
	return &interceptingWriter{header: make(http.Header), statusCode: http.StatusOK}
}

func (iw *interceptingWriter) Header() http.Header { return iw.header }

func (iw *interceptingWriter) Write(b []byte) (int, error) { return iw.body.Write(b) }

func (iw *interceptingWriter) WriteHeader(statusCode int) { iw.statusCode = statusCode }

const liveReloadScript = `<script>
  (function() {
    var socket = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection lost. Restart 'makesite serve'.");
    };
  })();
</script>
`
