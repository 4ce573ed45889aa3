package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/pipeline"
)

const collapsed = "main;parse 3\nmain;parse;lex 2\nmain;render 5\n"

func newTestServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(fc, nil, nil), Config{MaxUploadBytes: maxUpload})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func upload(t *testing.T, ts *httptest.Server, body string) ProfileInfo {
	t.Helper()
	resp, err := http.Post(ts.URL+"/profiles?name=stacks.folded", "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	var pi ProfileInfo
	if err := json.NewDecoder(resp.Body).Decode(&pi); err != nil {
		t.Fatal(err)
	}
	return pi
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 0)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Build.Version == "" || health.Profiles != 0 {
		t.Errorf("health = %+v", health)
	}

	upload(t, ts, collapsed)
	resp = get(t, ts.URL+"/healthz")
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Profiles != 1 {
		t.Errorf("profiles = %d after one upload, want 1", health.Profiles)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t, 0)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestUploadAndInfo(t *testing.T) {
	ts := newTestServer(t, 0)
	pi := upload(t, ts, collapsed)
	if pi.ID == "" || pi.Input != pipeline.InputCollapsed || pi.Name != "stacks.folded" {
		t.Fatalf("upload = %+v", pi)
	}

	resp := get(t, ts.URL+"/profiles/"+pi.ID+"?kind=default")
	var got ProfileInfo
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Chart == nil || got.Chart.Frames != 4 || got.Chart.Layers != 3 {
		t.Errorf("chart = %+v, want 4 frames in 3 layers", got.Chart)
	}

	resp = get(t, ts.URL+"/profiles")
	var list []ProfileInfo
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != pi.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestUploadErrors(t *testing.T) {
	ts := newTestServer(t, 16)
	tests := []struct {
		name string
		url  string
		body string
		want int
	}{
		{"too large", "/profiles", strings.Repeat("a;b 1\n", 10), http.StatusRequestEntityTooLarge},
		{"empty", "/profiles", "", http.StatusBadRequest},
		{"bad input", "/profiles?input=xml", "a 1\n", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+tt.url, "text/plain", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	ts := newTestServer(t, 0)
	pi := upload(t, ts, collapsed)
	url := ts.URL + "/profiles/" + pi.ID + "/render.png?size=200x100&left=0&width=5&search=parse"

	resp := get(t, url)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "miss" {
		t.Errorf("first render X-Cache = %q, want miss", resp.Header.Get("X-Cache"))
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	again := get(t, url)
	if again.Header.Get("X-Cache") != "hit" {
		t.Errorf("second render X-Cache = %q, want hit", again.Header.Get("X-Cache"))
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t, 0)
	pi := upload(t, ts, collapsed)
	resp := get(t, ts.URL+"/profiles/"+pi.ID+"/render.dot?detailed=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "digraph") {
		t.Errorf("body = %q, want DOT source", buf.String())
	}
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, 0)
	pi := upload(t, ts, collapsed)
	resp := get(t, ts.URL+"/profiles/"+pi.ID+"/search?q=pars")
	var sr SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatal(err)
	}
	if len(sr.Matches) != 1 || sr.Matches[0].Name != "parse" || !sr.Matches[0].Best {
		t.Errorf("matches = %+v", sr.Matches)
	}
	if sr.Matches[0].Depth != 1 {
		t.Errorf("depth = %d, want 1", sr.Matches[0].Depth)
	}
}

func TestRequestErrors(t *testing.T) {
	ts := newTestServer(t, 0)
	pi := upload(t, ts, collapsed)
	tests := []struct {
		name string
		path string
		want int
		code string
	}{
		{"unknown id", "/profiles/0123abcd/render.png", http.StatusNotFound, "PROFILE_NOT_FOUND"},
		{"malformed id", "/profiles/NOT_AN_ID/search?q=a", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad dpr", "/profiles/" + pi.ID + "/render.png?dpr=abc", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad size", "/profiles/" + pi.ID + "/render.png?size=12", http.StatusBadRequest, "INVALID_VIEW"},
		{"negative width", "/profiles/" + pi.ID + "/render.png?width=-1", http.StatusBadRequest, "INVALID_VIEW"},
		{"bad kind", "/profiles/" + pi.ID + "?kind=sideways", http.StatusBadRequest, "INVALID_INPUT"},
		{"unsupported kind", "/profiles/" + pi.ID + "?kind=grouped", http.StatusNotImplemented, "UNSUPPORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var er errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
				t.Fatal(err)
			}
			if er.Code != tt.code || er.RequestID == "" {
				t.Errorf("error = %+v, want code %s", er, tt.code)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t, 0)
	pi := upload(t, ts, collapsed)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/profiles/"+pi.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if got := get(t, ts.URL+"/profiles/"+pi.ID).StatusCode; got != http.StatusNotFound {
		t.Errorf("after delete status = %d, want 404", got)
	}
}
