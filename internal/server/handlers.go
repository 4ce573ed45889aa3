package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flamechart/pkg/buildinfo"
	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/search"
)

// ProfileInfo describes an uploaded profile.
type ProfileInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Input    string     `json:"input"`
	Frames   int        `json:"frames"`
	Uploaded time.Time  `json:"uploaded"`
	Chart    *ChartInfo `json:"chart,omitempty"`
}

// ChartInfo summarizes one layout of a profile.
type ChartInfo struct {
	Kind   string  `json:"kind"`
	Frames int     `json:"frames"`
	Layers int     `json:"layers"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Total  string  `json:"total"`
}

// SearchMatch is one frame in a search response.
type SearchMatch struct {
	Name  string  `json:"name"`
	File  string  `json:"file,omitempty"`
	Line  int     `json:"line,omitempty"`
	Depth int     `json:"depth"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Best  bool    `json:"best,omitempty"`
}

// SearchResponse lists the frames matching a query in layer order.
type SearchResponse struct {
	Query   string        `json:"query"`
	Mode    string        `json:"mode"`
	Matches []SearchMatch `json:"matches"`
}

type errorResponse struct {
	Code      string `json:"code,omitempty"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatPNG: "image/png",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string         `json:"status"`
	Build    buildinfo.Info `json:"build"`
	Profiles int            `json:"profiles"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Build:    buildinfo.Get(),
		Profiles: s.store.len(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	opts := pipeline.Options{
		Path:       name,
		Input:      q.Get("input"),
		SampleType: q.Get("sample_type"),
		Unit:       q.Get("unit"),
	}
	if opts.Input != "" {
		if err := pipeline.ValidateInput(opts.Input); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeStatus(w, r, http.StatusRequestEntityTooLarge, "profile exceeds %d bytes", s.cfg.MaxUploadBytes)
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload"))
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty profile"))
		return
	}

	loaded, err := s.runner.LoadBytes(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if name == "" {
		name = loaded.Profile.Name()
	}
	e := s.store.add(name, loaded)
	s.logger.Info("profile uploaded", "id", e.ID, "name", name, "input", loaded.Input, "bytes", len(data))
	writeJSON(w, http.StatusCreated, info(e, nil, ""))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries := s.store.list()
	out := make([]ProfileInfo, len(entries))
	for i, e := range entries {
		out[i] = info(e, nil, "")
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	e, opts, ok := s.lookup(w, r)
	if !ok {
		return
	}
	chart, err := s.layout(r, e, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info(e, chart, opts.Kind))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.remove(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRender returns a handler rendering one format.
func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, format)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	e, opts, ok := s.lookup(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{format}
	chart, err := s.layout(r, e, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), e.Loaded, chart, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	e, opts, ok := s.lookup(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	chart, err := s.layout(r, e, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Search(chart, search.Mode(opts.SearchMode), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := SearchResponse{Query: query, Mode: opts.SearchMode, Matches: make([]SearchMatch, 0, len(res.Matches))}
	for _, f := range res.Matches {
		fi := f.Node.Frame.FrameInfo
		out.Matches = append(out.Matches, SearchMatch{
			Name:  fi.Name,
			File:  fi.File,
			Line:  fi.Line,
			Depth: f.Depth,
			Start: f.Start,
			End:   f.End,
			Best:  f == res.Best,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// lookup resolves the {id} route parameter and parses the request's
// pipeline options. On failure the error response is already written.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, pipeline.Options, bool) {
	e, err := s.store.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Options{}, false
	}
	opts, err := s.options(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Options{}, false
	}
	return e, opts, true
}

func (s *Server) layout(r *http.Request, e *entry, opts pipeline.Options) (*flamechart.Flamechart, error) {
	return e.chart(opts, func() (*flamechart.Flamechart, error) {
		return s.runner.Layout(r.Context(), e.Loaded, opts)
	})
}

// options overlays query parameters on the configured defaults.
func (s *Server) options(q url.Values) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Path = ""
	opts.Formats = nil

	str := func(name string, dst *string) {
		if v := q.Get(name); v != "" {
			*dst = v
		}
	}
	str("kind", &opts.Kind)
	str("root_filter", &opts.RootFilter)
	str("theme", &opts.Theme)
	str("search", &opts.Search)
	str("mode", &opts.SearchMode)

	if size := q.Get("size"); size != "" {
		w, h, err := pipeline.ParseSize(size)
		if err != nil {
			return opts, err
		}
		opts.Width, opts.Height = w, h
	}

	var err error
	if opts.DPR, err = floatParam(q, "dpr", opts.DPR); err != nil {
		return opts, err
	}
	if opts.Top, err = floatParam(q, "top", opts.Top); err != nil {
		return opts, err
	}
	if opts.Left, err = optionalFloatParam(q, "left", opts.Left); err != nil {
		return opts, err
	}
	if opts.Span, err = optionalFloatParam(q, "width", opts.Span); err != nil {
		return opts, err
	}
	if opts.FocusSearch, err = boolParam(q, "focus", opts.FocusSearch); err != nil {
		return opts, err
	}
	if opts.Detailed, err = boolParam(q, "detailed", opts.Detailed); err != nil {
		return opts, err
	}
	if opts.Refresh, err = boolParam(q, "refresh", false); err != nil {
		return opts, err
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return f, nil
}

func optionalFloatParam(q url.Values, name string, def *float64) (*float64, error) {
	if q.Get(name) == "" {
		return def, nil
	}
	f, err := floatParam(q, name, 0)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}

func info(e *entry, chart *flamechart.Flamechart, kind string) ProfileInfo {
	pi := ProfileInfo{
		ID:       e.ID,
		Name:     e.Name,
		Input:    e.Loaded.Input,
		Frames:   e.Loaded.Profile.Frames().Len(),
		Uploaded: e.Uploaded,
	}
	if chart != nil {
		pi.Chart = &ChartInfo{
			Kind:   kind,
			Frames: chart.FrameCount(),
			Layers: len(chart.Layers()),
			Min:    chart.MinValue(),
			Max:    chart.MaxValue(),
			Total:  chart.FormatValue(chart.TotalWeight()),
		}
	}
	return pi
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Code:      string(errors.GetCode(err)),
		Error:     errors.UserMessage(err),
		RequestID: RequestIDFrom(r.Context()),
	})
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{
		Error:     fmt.Sprintf(format, args...),
		RequestID: RequestIDFrom(r.Context()),
	})
}
