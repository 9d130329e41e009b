package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

func testServer() *Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), nil, logger)
	s.Options = pipeline.Options{Engine: pipeline.EngineGrid}
	return s
}

func postBuild(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/builds", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST builds: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

const shopBuildRequest = `{
	"name": "shop",
	"documents": [{
		"name": "shop.yaml",
		"content": "screen:shop:cart:\n  components:\n    - checkout_button:\n        type: button\n        action: $screen:shop:checkout\nscreen:shop:checkout:\n  description: Checkout form\n"
	}]
}`

func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCreateAndFetchBuild(t *testing.T) {
	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	resp := postBuild(t, ts, shopBuildRequest)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var created struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		NodeCount int    `json:"node_count"`
		EdgeCount int    `json:"edge_count"`
	}
	decodeJSON(t, resp, &created)
	if created.ID == "" || created.Name != "shop" {
		t.Errorf("created = %+v", created)
	}
	if created.NodeCount != 2 || created.EdgeCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", created.NodeCount, created.EdgeCount)
	}

	graphResp, err := http.Get(fmt.Sprintf("%s/api/v1/builds/%s/graph", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("GET graph: %v", err)
	}
	var g struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	decodeJSON(t, graphResp, &g)
	if len(g.Nodes) != 2 {
		t.Errorf("graph nodes = %d, want 2", len(g.Nodes))
	}

	layoutResp, err := http.Get(fmt.Sprintf("%s/api/v1/builds/%s/layout", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("GET layout: %v", err)
	}
	var l struct {
		Positions map[string]struct{ X, Y float64 } `json:"positions"`
		Engine    string                            `json:"engine"`
	}
	decodeJSON(t, layoutResp, &l)
	if len(l.Positions) != 2 {
		t.Errorf("layout positions = %d, want 2", len(l.Positions))
	}
	if l.Engine != "grid" {
		t.Errorf("engine = %q, want grid", l.Engine)
	}
}

func TestCreateBuildValidation(t *testing.T) {
	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	cases := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty body", `{}`, "INVALID_INPUT"},
		{"no documents", `{"name": "x", "documents": []}`, "INVALID_INPUT"},
		{"unnamed document", `{"documents": [{"content": "a: b"}]}`, "INVALID_DOCUMENT"},
		{"traversal document name", `{"documents": [{"name": "../x.yaml", "content": "a: b"}]}`, "INVALID_DOCUMENT"},
		{"bad engine", `{"engine": "d3", "documents": [{"name": "a.yaml", "content": "a: b"}]}`, "INVALID_ENGINE"},
		{"bad vocabulary", `{"vocabulary": ["Modal"], "documents": [{"name": "a.yaml", "content": "a: b"}]}`, "INVALID_VOCABULARY"},
		{"malformed json", `{`, "INVALID_INPUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postBuild(t, ts, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				resp.Body.Close()
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var body struct {
				Code string `json:"code"`
			}
			decodeJSON(t, resp, &body)
			if body.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tc.wantCode)
			}
		})
	}
}

func TestListBuilds(t *testing.T) {
	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	resp := postBuild(t, ts, shopBuildRequest)
	resp.Body.Close()

	listResp, err := http.Get(ts.URL + "/api/v1/builds")
	if err != nil {
		t.Fatalf("GET builds: %v", err)
	}
	var list struct {
		Builds []struct {
			ID string `json:"id"`
		} `json:"builds"`
	}
	decodeJSON(t, listResp, &list)
	if len(list.Builds) != 1 {
		t.Errorf("builds = %d, want 1", len(list.Builds))
	}
}

func TestDeleteBuild(t *testing.T) {
	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	resp := postBuild(t, ts, shopBuildRequest)
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/builds/%s", ts.URL, created.ID), nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE build: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", delResp.StatusCode)
	}

	getResp, err := http.Get(fmt.Sprintf("%s/api/v1/builds/%s", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("GET build: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", getResp.StatusCode)
	}
}

func TestNotFound(t *testing.T) {
	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/builds/nope")
	if err != nil {
		t.Fatalf("GET build: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
