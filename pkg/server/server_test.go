package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/registry"
	"cgp-hq/seqval/pkg/telemetry/health"
	"cgp-hq/seqval/pkg/telemetry/metrics"
)

const headings = "Donor_ID\tTissue_ID\tIs_Normal\tIs_Normal_for_Donor\tIs_Normal_for_Tissue\tSample\tLibrary\tPlatform\tPlatform_Unit\tGroup_ID\tGroup_Control\tFile\tFile_2"

func manifest(markDuplicates string) string {
	return "Form type:\tIMPORT\n" +
		"Form version:\t1.0\n" +
		"Our Ref:\t\n" +
		"Your Ref:\tPRJ-1\n" +
		"Species - Build:\tHUMAN - GRCh38\n" +
		"Seq Protocol:\tWGS\n" +
		"Data Type:\tDNA\n" +
		"Mark Duplicates:\t" + markDuplicates + "\n" +
		headings + "\n" +
		"D1\tT1\tY\tY\tY\tS1\tL1\tILLUMINA\tPU1\tG1\tY\tr1_1.fq.gz\tr1_2.fq.gz\n"
}

var (
	validManifest   = manifest("Y")
	invalidManifest = manifest("X")
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	server    *Server
	collector *metrics.Collector
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Telemetry.Metrics.Namespace = "test"
	if mutate != nil {
		mutate(cfg)
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	manager, err := registry.NewManager(&cfg.Schemas, quietLogger(), registry.WithReloadObserver(collector))
	if err != nil {
		t.Fatal(err)
	}
	if err := manager.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	checker := check.NewChecker(manager,
		check.WithOptions(check.OptionsFrom(&cfg.Validation)),
		check.WithLogger(quietLogger()),
		check.WithObserver(collector),
		check.WithRejectionRecorder(collector),
	)

	hc := health.New(time.Second)
	hc.RegisterCheck("schemas", health.SchemaCheck(manager, manager.Registry()))

	srv := NewServer(&cfg.Server, manager, checker,
		WithLogger(quietLogger()),
		WithMetrics(collector, cfg.Telemetry.Metrics.Path),
		WithHealth(hc),
		WithBuildInfo(BuildInfo{Version: "test"}),
	)
	return &fixture{server: srv, collector: collector}
}

func (f *fixture) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		wantStatus  int
		wantResult  string
		wantCode    string
	}{
		{
			name:       "valid manifest",
			target:     "/v1/validate?format=json",
			body:       validManifest,
			wantStatus: http.StatusOK,
			wantResult: "pass",
		},
		{
			name:       "findings are still a 200",
			target:     "/v1/validate?format=json",
			body:       invalidManifest,
			wantStatus: http.StatusOK,
			wantResult: "fail",
		},
		{
			name:        "csv input by content type",
			target:      "/v1/validate",
			contentType: "text/csv",
			body:        strings.ReplaceAll(validManifest, "\t", ","),
			wantStatus:  http.StatusOK,
			wantResult:  "pass",
		},
		{
			name:       "unknown schema",
			target:     "/v1/validate",
			body:       strings.Replace(validManifest, "IMPORT", "EXPORT", 1),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   check.ReasonUnknownSchema,
		},
		{
			name:       "no body section",
			target:     "/v1/validate",
			body:       "Form type:\tIMPORT\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   check.ReasonMalformed,
		},
		{
			name:       "bad output format",
			target:     "/v1/validate?format=xml",
			body:       validManifest,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "bad input format",
			target:     "/v1/validate?input=xlsx",
			body:       validManifest,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			rec := f.do(http.MethodPost, tt.target, tt.contentType, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantResult != "" {
				if got := rec.Header().Get("X-Validation-Result"); got != tt.wantResult {
					t.Errorf("X-Validation-Result = %q, want %q", got, tt.wantResult)
				}
			}
			if tt.wantCode != "" {
				var resp ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("invalid error body: %v", err)
				}
				if resp.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
				}
				if resp.RequestID == "" {
					t.Error("error response should carry the request ID")
				}
			}
		})
	}
}

func TestValidate_JSONReport(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/v1/validate?format=json&name=upload.tsv", "", invalidManifest)

	var doc struct {
		Summary check.Summary   `json:"summary"`
		Reports []*check.Report `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(doc.Reports) != 1 || doc.Reports[0].Source != "upload.tsv" {
		t.Fatalf("reports = %+v", doc.Reports)
	}
	fs := doc.Reports[0].Findings
	if len(fs) != 1 || fs[0].Location.Field != "Mark Duplicates:" || fs[0].Location.Line != 8 {
		t.Errorf("findings = %+v", fs)
	}
	if doc.Summary.Failed != 1 {
		t.Errorf("summary = %+v", doc.Summary)
	}
}

func TestValidate_CSVReport(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/v1/validate?format=csv", "", invalidManifest)

	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "invalid_value" {
		t.Errorf("rows = %v", rows)
	}
}

func TestValidate_BodyTooLarge(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		body   string
	}{
		{
			name:   "byte limit",
			mutate: func(c *config.Config) { c.Server.MaxBodyBytes = 64 },
			body:   validManifest,
		},
		{
			name:   "record limit",
			mutate: func(c *config.Config) { c.Validation.MaxRecords = 1 },
			body:   validManifest + "D1\tT1\tY\tY\tY\tS2\tL2\tILLUMINA\tPU2\tG1\tY\tr2_1.fq.gz\tr2_2.fq.gz\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mutate)
			rec := f.do(http.MethodPost, "/v1/validate", "", tt.body)

			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("status = %d, want 413; body: %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if resp.Code != check.ReasonTooLarge {
				t.Errorf("code = %q, want %q", resp.Code, check.ReasonTooLarge)
			}

			metricsBody := f.do(http.MethodGet, "/metrics", "", "").Body.String()
			want := `test_validation_rejected_total{reason="too_large"} 1`
			if !strings.Contains(metricsBody, want) {
				t.Errorf("metrics missing %s", want)
			}
		})
	}
}

func TestNormalise(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/v1/normalise", "", validManifest)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	ref := rec.Header().Get("X-Manifest-Ref")
	if ref == "" {
		t.Fatal("X-Manifest-Ref should be set")
	}
	var doc struct {
		Header map[string]string   `json:"header"`
		Body   []map[string]string `json:"body"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Header["Our Ref:"] != ref {
		t.Errorf("Our Ref: = %q, want %q", doc.Header["Our Ref:"], ref)
	}
	if len(doc.Body) != 1 || doc.Body[0]["File_2"] != "r1_2.fq.gz" {
		t.Errorf("body = %v", doc.Body)
	}

	rec = f.do(http.MethodPost, "/v1/normalise?output=tsv", "", validManifest)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), headings) {
		t.Errorf("tsv output status = %d body:\n%s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/v1/normalise", "", invalidManifest)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("failing manifest status = %d, want 422", rec.Code)
	}
}

func TestNormalise_FailingManifest(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"json output", "/v1/normalise?name=upload.tsv"},
		{"tsv output", "/v1/normalise?output=tsv&name=upload.tsv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			rec := f.do(http.MethodPost, tt.target, "", invalidManifest)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
			if rec.Header().Get("X-Manifest-Ref") != "" {
				t.Error("failing manifest should not be assigned a reference")
			}
			var doc struct {
				Reports []*check.Report `json:"reports"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(doc.Reports) != 1 || len(doc.Reports[0].Findings) != 1 {
				t.Fatalf("reports = %+v", doc.Reports)
			}
			if got := doc.Reports[0].Findings[0].Location.Field; got != "Mark Duplicates:" {
				t.Errorf("finding field = %q", got)
			}
		})
	}
}

func TestSchemas(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/v1/schemas", "", "")
	var list schemaList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if list.Version == "" || len(list.Schemas) != 1 || list.Schemas[0].Key != "IMPORT-1.0" {
		t.Errorf("list = %+v", list)
	}

	if rec := f.do(http.MethodGet, "/v1/schemas/IMPORT-1.0", "", ""); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/v1/schemas/NOPE-1", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing schema status = %d", rec.Code)
	}
	if rec := f.do(http.MethodPost, "/v1/schemas/reload", "", ""); rec.Code != http.StatusOK {
		t.Errorf("reload status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	for _, path := range []string{"/health", "/ready", "/version"} {
		if rec := f.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
		}
	}
	if rec := f.do(http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/v1/validate", "", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/validate = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.do(http.MethodPost, "/v1/validate", "", validManifest)

	rec := f.do(http.MethodGet, "/metrics", "", "")
	body := rec.Body.String()
	for _, want := range []string{
		"test_validation_sessions_total",
		"test_schemas_loaded",
		`test_http_requests_total{code="200",method="POST",route="/v1/validate"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Server.ShutdownTimeout = time.Second })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !f.server.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if f.server.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}
