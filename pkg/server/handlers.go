package server

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/manifest/output"
	"cgp-hq/seqval/pkg/manifest/reader"
	"cgp-hq/seqval/pkg/registry"
)

// defaultSource names a manifest posted without a ?name= parameter.
const defaultSource = "request"

// manifestRequest reads the common parameters of the manifest endpoints.
type manifestRequest struct {
	source string
	format reader.Format
	body   io.Reader
}

func (s *Server) parseManifestRequest(w http.ResponseWriter, r *http.Request) (*manifestRequest, error) {
	q := r.URL.Query()

	req := &manifestRequest{
		source: q.Get("name"),
		format: reader.FormatTSV,
		body:   r.Body,
	}
	if req.source == "" {
		req.source = defaultSource
	}

	switch f := strings.ToLower(q.Get("input")); f {
	case "", string(reader.FormatTSV):
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "text/csv" && f == "" {
			req.format = reader.FormatCSV
		}
	case string(reader.FormatCSV):
		req.format = reader.FormatCSV
	default:
		return nil, fmt.Errorf("unsupported input format %q (want tsv or csv)", f)
	}

	if s.config.MaxBodyBytes > 0 {
		req.body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	return req, nil
}

// handleValidate validates the posted manifest and reports its findings in
// the requested format. A manifest with findings is still a 200; only input
// that cannot be validated is an error.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	format, err := cli.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_request")
		return
	}
	req, err := s.parseManifestRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_request")
		return
	}

	report, err := s.checker.CheckReader(r.Context(), req.body, req.source, req.format)
	if err != nil {
		s.respondCheckError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := cli.NewFormatter(format).FormatTo(&buf, []*check.Report{report}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "internal")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Validation-Result", result(report))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func result(r *check.Report) string {
	if r.OK() {
		return "pass"
	}
	return "fail"
}

// handleNormalise validates the posted manifest and, when it passes, returns
// its normalised form: JSON by default or TSV with ?output=tsv. The
// reference is returned in X-Manifest-Ref. A failing manifest gets 422 with
// the JSON report.
func (s *Server) handleNormalise(w http.ResponseWriter, r *http.Request) {
	out := strings.ToLower(r.URL.Query().Get("output"))
	if out != "" && out != "json" && out != "tsv" {
		s.respondError(w, r, fmt.Errorf("unsupported output %q (want json or tsv)", out), http.StatusBadRequest, "bad_request")
		return
	}
	req, err := s.parseManifestRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_request")
		return
	}

	in, report, err := s.checker.ValidateReader(r.Context(), req.body, req.source, req.format)
	if err != nil {
		s.respondCheckError(w, r, err)
		return
	}
	if !report.OK() {
		var buf bytes.Buffer
		if err := (&cli.JSONFormatter{}).FormatTo(&buf, []*check.Report{report}); err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError, "internal")
			return
		}
		w.Header().Set("Content-Type", cli.FormatJSON.ContentType())
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write(buf.Bytes())
		return
	}

	header, ref := output.AssignReference(in.Manifest.Header)

	var buf bytes.Buffer
	contentType := "application/json"
	if out == "tsv" {
		contentType = "text/tab-separated-values; charset=utf-8"
		err = output.WriteTSV(&buf, in.Schema, header, in.Records)
	} else {
		err = output.WriteJSON(&buf, in.Schema, header, in.Records)
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "internal")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Manifest-Ref", ref)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// schemaList is the body of GET /v1/schemas.
type schemaList struct {
	Version string          `json:"version"`
	Schemas []registry.Info `json:"schemas"`
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schemaList{
		Version: s.schemas.Version(),
		Schemas: registry.DescribeAll(s.schemas.Schemas()),
	})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	for _, sch := range s.schemas.Schemas() {
		if sch.Key() == key {
			writeJSON(w, http.StatusOK, registry.Describe(sch))
			return
		}
	}
	s.respondError(w, r, &registry.NotFoundError{Key: key}, http.StatusNotFound, check.ReasonUnknownSchema)
}

// handleReloadSchemas re-reads the schema set. On failure the previous set
// stays active and the error is returned with 500.
func (s *Server) handleReloadSchemas(w http.ResponseWriter, r *http.Request) {
	if err := s.schemas.Reload(); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "reload_failed")
		return
	}
	s.logger.InfoContext(r.Context(), "schemas reloaded on request", "version", s.schemas.Version())
	s.handleListSchemas(w, r)
}
