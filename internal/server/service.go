// Package server serves budget charts over HTTP and keeps the loaded
// datasets fresh.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/budgetviz/internal/chart"
	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/export"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr    string
	Sources []pipeline.Source
	Load    pipeline.Options
	// Settings supplies chart geometry, category filters and colors.
	Settings config.Config
	// Interval re-fetches every source periodically. Zero loads once.
	Interval     time.Duration
	EventsBuffer int
}

// SourceStatus describes one loaded dataset.
type SourceStatus struct {
	Topic    model.View `json:"topic"`
	Location string     `json:"location"`
	Rows     int        `json:"rows"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt          time.Time      `json:"started_at"`
	LastLoadAt         time.Time      `json:"last_load_at"`
	LoadCount          int64          `json:"load_count"`
	RefreshIntervalSec int            `json:"refresh_interval_sec"`
	Ready              bool           `json:"ready"`
	FromCache          bool           `json:"from_cache"`
	Sources            []SourceStatus `json:"sources"`
	LastError          string         `json:"last_error,omitempty"`
	EventCount         int            `json:"event_count"`
	SubscriberCount    int            `json:"subscriber_count"`
}

// Event is emitted after every load attempt.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // "loaded" or "load_error"
	Timestamp time.Time `json:"timestamp"`
	Rows      int       `json:"rows"`
	// Digest fingerprints the loaded observations; pages reload only when
	// it differs from the one they were served with.
	Digest string `json:"digest,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Service provides the chart server runtime and HTTP API.
type Service struct {
	cfg    Config
	render chart.RenderConfig

	mu         sync.RWMutex
	startedAt  time.Time
	lastLoadAt time.Time
	loadCount  int64
	lastError  string
	ready      bool
	fromCache  bool
	data       model.Datasets
	colors     chart.CategoryColorMap
	digest     string

	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new chart service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval > 0 && cfg.Interval < 10*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultConfig().Server.Addr
	}

	return &Service{
		cfg:       cfg,
		render:    chart.RenderConfigFrom(cfg.Settings),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/{$}", s.handlePage)
	mux.HandleFunc("/chart.svg", s.handleChart(export.FormatSVG, "image/svg+xml"))
	mux.HandleFunc("/chart.png", s.handleChart(export.FormatPNG, "image/png"))
	mux.HandleFunc("/chart.html", s.handleChart(export.FormatHTML, "text/html; charset=utf-8"))
	mux.HandleFunc("/v1/datasets", s.handleDatasets)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run loads the datasets, serves HTTP, and refreshes on the configured
// interval until ctx is canceled. A failed load is reported by the
// endpoints; it does not stop the server.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	_ = s.Refresh(ctx)

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-tick:
			_ = s.Refresh(ctx)
		case err := <-errCh:
			return fmt.Errorf("chart http server: %w", err)
		}
	}
}

// Refresh fetches every source once. On failure the previously loaded
// datasets, if any, stay in service and the error is recorded.
func (s *Service) Refresh(ctx context.Context) error {
	res, err := pipeline.Load(ctx, s.cfg.Sources, s.cfg.Load, nil)
	now := time.Now()

	s.mu.Lock()
	s.lastLoadAt = now
	s.loadCount++
	var ev Event
	if err != nil {
		s.lastError = err.Error()
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "load_error", Timestamp: now, Error: err.Error()}
	} else {
		s.lastError = ""
		s.ready = true
		s.fromCache = res.FromCache
		s.data = res.Datasets
		s.colors = chart.ColorsFrom(s.cfg.Settings, res.Datasets)
		s.digest = digest(res.Datasets)
		rows := 0
		for _, d := range res.Datasets.All() {
			rows += d.Len()
		}
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "loaded", Timestamp: now, Rows: rows, Digest: s.digest}
		if res.CacheErr != nil {
			log.Printf("budgetviz server cache error: %v", res.CacheErr)
		}
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("budgetviz server load error: %v", err)
	}
	s.publishEvent(ev)
	return err
}

// current returns the datasets in service, or the load error when none
// have loaded yet.
// digest hashes every observation in view order.
func digest(data model.Datasets) string {
	h := fnv.New64a()
	for _, d := range data.All() {
		_, _ = fmt.Fprintf(h, "%s\n", d.Topic)
		for _, o := range d.Observations {
			_, _ = fmt.Fprintf(h, "%d\x1f%s\x1f%x\n", o.Year, o.Category, math.Float64bits(o.ValuePctGDP))
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (s *Service) current() (model.Datasets, chart.CategoryColorMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		if s.lastError != "" {
			return model.Datasets{}, chart.CategoryColorMap{}, errors.New(s.lastError)
		}
		return model.Datasets{}, chart.CategoryColorMap{}, errors.New("datasets are still loading")
	}
	return s.data, s.colors, nil
}

func (s *Service) scene(r *http.Request) (*chart.Scene, error) {
	data, colors, err := s.current()
	if err != nil {
		return nil, err
	}
	return chart.Render(s.render, data, colors, r.URL.Query().Get("view")), nil
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:          s.startedAt,
		LastLoadAt:         s.lastLoadAt,
		LoadCount:          s.loadCount,
		RefreshIntervalSec: int(s.cfg.Interval.Seconds()),
		Ready:              s.ready,
		FromCache:          s.fromCache,
		LastError:          s.lastError,
		EventCount:         len(s.events),
		SubscriberCount:    len(s.subs),
	}
	for _, src := range s.cfg.Sources {
		ss := SourceStatus{Topic: src.Topic, Location: src.Location}
		if d, ok := s.data.Get(src.Topic); ok {
			ss.Rows = d.Len()
		}
		st.Sources = append(st.Sources, ss)
	}
	return st
}

func unavailable(w http.ResponseWriter, err error) {
	http.Error(w, "chart unavailable: "+err.Error(), http.StatusServiceUnavailable)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleChart(f export.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := s.scene(r)
		if err != nil {
			unavailable(w, err)
			return
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, sc, f); err != nil {
			log.Printf("budgetviz server render error: %v", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Service) handlePage(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scene(r)
	if err != nil {
		unavailable(w, err)
		return
	}

	var svg bytes.Buffer
	if err := chart.WriteSVG(&svg, sc); err != nil {
		log.Printf("budgetviz server render error: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	s.mu.RLock()
	dig := s.digest
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := writePage(&buf, sc, svg.Bytes(), dig); err != nil {
		log.Printf("budgetviz server page error: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Service) handleDatasets(w http.ResponseWriter, r *http.Request) {
	data, _, err := s.current()
	if err != nil {
		unavailable(w, err)
		return
	}

	out := data.All()
	if name := r.URL.Query().Get("view"); name != "" {
		v, _ := chart.ResolveView(data, name)
		d, _ := data.Get(v)
		out = []model.Dataset{d}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
