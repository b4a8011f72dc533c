// Package serve exposes a Site over HTTP with live reload for theme edits.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prizma/internal/app"
	domainerr "prizma/internal/domain/errors"
	"prizma/internal/domain/site"
	"prizma/internal/logger"
)

type Server struct {
	site *app.Site

	sseMu    sync.Mutex
	sseConns map[chan string]struct{}

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(s *app.Site) *Server {
	return &Server{
		site:     s,
		sseConns: make(map[chan string]struct{}),
	}
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Handler is the full route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/css/*", s.handleStatic)
	r.Get("/js/*", s.handleStatic)

	r.Get("/-/events", s.handleSSE)
	r.Post("/-/reload", s.handleReload)

	r.Get("/post/{id}.md", s.handleMarkdown)
	r.Get("/*", s.handlePage)
	r.NotFound(s.handleNotFound)
	return r
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.startWatch(ctx); err != nil {
		logger.Warnf("[serve] theme watch disabled: %v", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("[serve] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if !knownPath(r.URL.Path) {
		s.handleNotFound(w, r)
		return
	}
	// The escaped form keeps "%2F" inside a tag as part of its segment.
	route := site.ParseFragment(r.URL.EscapedPath())

	// Views may be fetched live from the feed, so only they skip the ETag.
	var etag string
	if route.Kind != site.RouteView {
		etag = s.site.Fingerprint().ETag()
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	out, status, err := s.site.Render(r.Context(), route)
	if err != nil {
		logger.Errorf("[serve] render %s: %v", route, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	if etag != "" && status == http.StatusOK {
		w.Header().Set("ETag", etag)
	}
	writeHTML(w, status, out)
}

// knownPath reports whether the first path segment names a view. Anything
// else is a 404 instead of falling back to the index.
func knownPath(p string) bool {
	head, _, _ := strings.Cut(strings.Trim(p, "/"), "/")
	switch head {
	case "", "page", "post", "tag", "archive", "view", "topics", "contact":
		return true
	}
	return false
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	out, err := s.site.NotFound(r.Context())
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, out)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	_, md, err := s.site.Markdown(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domainerr.ErrPostNotFound):
		http.Error(w, "post not found", http.StatusNotFound)
		return
	case err != nil:
		logger.Errorf("[serve] markdown export: %v", err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(md))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	http.FileServerFS(s.site.Static()).ServeHTTP(w, r)
}

type reloadResult struct {
	Posts  int    `json:"posts"`
	LoadID string `json:"load_id"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	coll, err := s.site.Reload(r.Context())
	switch {
	case errors.Is(err, domainerr.ErrLoadInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		logger.Warnf("[serve] reload failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.broadcastSSE("content")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reloadResult{Posts: coll.Len(), LoadID: coll.LoadID()})
}

func (s *Server) startWatch(ctx context.Context) error {
	root := s.site.ThemeDir()
	if root == "" {
		return nil
	}
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	logger.Infof("[serve] watching %s for theme changes", s.site.ThemeDir())
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(200 * time.Millisecond)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("[serve] watcher error: %v", err)
		case <-debounce.C:
			if err := s.site.ReloadTheme(); err != nil {
				logger.Warnf("[serve] theme reload: %v", err)
				continue
			}
			logger.Infof("[serve] theme reloaded")
			s.broadcastSSE("theme")
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case what := <-ch:
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", what)
			flusher.Flush()
		}
	}
}

// broadcastSSE tells every open page to reload. Slow clients miss events
// rather than block the sender.
func (s *Server) broadcastSSE(what string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- what:
		default:
		}
	}
}

func writeHTML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
