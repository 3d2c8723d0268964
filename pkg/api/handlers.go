package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/layerroute/pkg/buildinfo"
	"github.com/matzehuels/layerroute/pkg/cache"
	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/pipeline"
	"github.com/matzehuels/layerroute/pkg/render"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// RouteResponse is the body of POST /v1/route and GET /v1/results/{id}.
type RouteResponse struct {
	ID        string         `json:"id"`
	Design    string         `json:"design"`
	Routed    int            `json:"routed"`
	Nets      int            `json:"nets"`
	TotalCost int            `json:"total_cost"`
	Search    ordering.Stats `json:"search"`
	Report    *render.Report `json:"report"`
	// Artifacts maps format to output. Binary formats are base64.
	Artifacts map[string]string `json:"artifacts,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",

	pipeline.FormatChart: "text/html; charset=utf-8",
}

func binaryFormat(format string) bool {
	return format == pipeline.FormatPNG || format == pipeline.FormatPDF
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := s.decodeDesign(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.runner.Execute(ctx, d, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := RouteResponse{
		ID:        uuid.NewString(),
		Design:    d.Name,
		Routed:    res.Stats.Routed,
		Nets:      res.Stats.Nets,
		TotalCost: res.Stats.TotalCost,
		Search:    res.Search,
		Report:    render.NewReport(res.Outcome),
		Artifacts: make(map[string]string, len(res.Artifacts)),
		CreatedAt: time.Now().UTC(),
	}
	for format, data := range res.Artifacts {
		if binaryFormat(format) {
			resp.Artifacts[format] = base64.StdEncoding.EncodeToString(data)
		} else {
			resp.Artifacts[format] = string(data)
		}
	}

	if err := s.store(ctx, resp, res.Artifacts); err != nil {
		s.logger.Warn("failed to store result", "id", resp.ID, "err", err)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) store(ctx context.Context, resp RouteResponse, artifacts map[string][]byte) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	c := s.runner.Cache
	if err := c.Set(ctx, s.keyer.ResultKey(resp.ID), body, cache.TTLResult); err != nil {
		return err
	}
	for format, data := range artifacts {
		if err := c.Set(ctx, s.keyer.ResultKey(resp.ID+"/"+format), data, cache.TTLResult); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id, err := resultID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, ok, err := s.runner.Cache.Get(r.Context(), s.keyer.ResultKey(id))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read result"))
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "result %s not found", id))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := resultID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	data, ok, err := s.runner.Cache.Get(r.Context(), s.keyer.ResultKey(id+"/"+format))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read artifact"))
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no %s artifact for result %s", format, id))
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func resultID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid result id %q", raw)
	}
	return id.String(), nil
}

// decodeDesign reads the body as JSON when the content type says so and as
// TOML otherwise.
func (s *Server) decodeDesign(w http.ResponseWriter, r *http.Request) (*design.Design, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		return design.DecodeJSON(body)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return design.Decode(bytes.NewReader(data))
}

func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Strategy: q.Get("strategy")}

	ints := []struct {
		name string
		dst  *int
	}{
		{"workers", &opts.Workers},
		{"limit", &opts.Limit},
		{"max_nets", &opts.MaxNets},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", p.name, v)
			}
			*p.dst = n
		}
	}
	if v := q.Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid timeout %q", v)
		}
		opts.Timeout = d
	}
	if v := q.Get("formats"); v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opts.Formats = append(opts.Formats, f)
			}
		}
	}
	return opts, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidCoordinate, errors.ErrCodeInvalidGrid,
		errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnreachable:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCodeOr(err, errors.ErrCodeInternal)
	writeJSON(w, statusFor(code), ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
