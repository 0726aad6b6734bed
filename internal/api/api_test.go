package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/observability"
	"github.com/matzehuels/graphmap/pkg/pipeline"
	"github.com/matzehuels/graphmap/pkg/store"
)

const twoClusterGraph = `{
  "nodes": [
    {"id": "a1", "cluster": "a", "x": 0, "y": 0},
    {"id": "a2", "cluster": "a", "x": 10, "y": 0},
    {"id": "a3", "cluster": "a", "x": 5, "y": 8},
    {"id": "b1", "cluster": "b", "x": 0, "y": 0},
    {"id": "b2", "cluster": "b", "x": 12, "y": 0},
    {"id": "b3", "cluster": "b", "x": 6, "y": 9}
  ],
  "edges": [
    {"from": "a1", "to": "a2"},
    {"from": "b1", "to": "b2"},
    {"from": "a3", "to": "b3"}
  ]
}`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(nil, nil, nil), st, opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body map[string]errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRenderAndFetchRun(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts, `{"graph": `+twoClusterGraph+`, "options": {"fallback": "extend"}}`)
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
	var rr RenderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		t.Fatal(err)
	}
	if rr.RunID == "" || rr.Map.RunID != rr.RunID {
		t.Errorf("run id = %q, map run id = %q", rr.RunID, rr.Map.RunID)
	}
	if rr.Summary.Territories != 2 || len(rr.Map.Territories) != 2 {
		t.Errorf("territories = %d", rr.Summary.Territories)
	}
	if rr.Map.Coloring.Policy != "extend" {
		t.Errorf("policy = %q, want extend", rr.Map.Coloring.Policy)
	}

	list := get(t, ts, "/runs")
	var lr struct {
		Runs []store.Run `json:"runs"`
	}
	if err := json.NewDecoder(list.Body).Decode(&lr); err != nil {
		t.Fatal(err)
	}
	if len(lr.Runs) != 1 || lr.Runs[0].ID != rr.RunID {
		t.Fatalf("runs = %+v", lr.Runs)
	}
	if lr.Runs[0].Map != nil {
		t.Error("list included the map")
	}

	run := get(t, ts, "/runs/"+rr.RunID)
	if run.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d", run.StatusCode)
	}

	points := get(t, ts, "/runs/"+rr.RunID+"/points.geojson")
	if points.StatusCode != http.StatusOK {
		t.Fatalf("GET points status = %d", points.StatusCode)
	}
	if ct := points.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type = %q", ct)
	}
	data, _ := io.ReadAll(points.Body)
	if !bytes.Contains(data, []byte(`"FeatureCollection"`)) {
		t.Errorf("points body = %s", data)
	}

	var names string
	for _, a := range rr.Artifacts {
		if strings.HasPrefix(a, "names/") {
			names = a
			break
		}
	}
	if names == "" {
		t.Fatalf("no search index in %v", rr.Artifacts)
	}
	if resp := get(t, ts, "/runs/"+rr.RunID+"/"+names); resp.StatusCode != http.StatusOK {
		t.Errorf("GET %s status = %d", names, resp.StatusCode)
	}
	if resp := get(t, ts, "/runs/"+rr.RunID+"/run.json"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unlisted artifact status = %d, want 404", resp.StatusCode)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, Options{})
	tests := []struct {
		name   string
		body   string
		status int
		code   apperrors.Code
	}{
		{"Malformed", `{"graph":`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"Empty", `{"graph": {"nodes": []}}`, http.StatusBadRequest, apperrors.ErrCodeEmptyInput},
		{"BadOption", `{"graph": ` + twoClusterGraph + `, "options": {"fallback": "retry"}}`, http.StatusBadRequest, apperrors.ErrCodeInvalidConfig},
		{"MissingKeyColumn", `{"graph": ` + twoClusterGraph + `, "attributes_csv": "name\nx\n"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

// panicOnce panics on its first Execute and delegates afterwards.
type panicOnce struct {
	next  executor
	calls atomic.Int32
}

func (p *panicOnce) Execute(ctx context.Context, g graph.Graph, opts pipeline.Options) (*pipeline.Result, error) {
	if p.calls.Add(1) == 1 {
		panic("render blew up")
	}
	return p.next.Execute(ctx, g, opts)
}

func TestRenderReleasesSlotAfterPanic(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(nil, nil, nil), st, Options{Concurrency: 1})
	s.runner = &panicOnce{next: s.runner}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	client := &http.Client{Timeout: 10 * time.Second}
	body := `{"graph": ` + twoClusterGraph + `}`
	for i, want := range []int{http.StatusInternalServerError, http.StatusOK} {
		resp, err := client.Post(ts.URL+"/render", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("request %d status = %d, want %d", i, resp.StatusCode, want)
		}
	}
}

func TestGetRunErrors(t *testing.T) {
	ts := newTestServer(t, Options{})
	if resp := get(t, ts, "/runs/not-a-run"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", resp.StatusCode)
	}
	resp := get(t, ts, "/runs/"+uuid.NewString())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != apperrors.ErrCodeNotFound {
		t.Errorf("code = %s", e.Code)
	}
	if resp := get(t, ts, "/runs?limit=zero"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := observability.NewPrometheus(reg)
	observability.SetHTTPHooks(p)
	observability.SetPipelineHooks(p)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	get(t, ts, "/healthz")
	resp := get(t, ts, "/metrics")
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte(`graphmap_http_requests_total{code="200",method="GET",route="/healthz"} 1`)) {
		t.Errorf("metrics missing healthz request:\n%s", data)
	}
}
