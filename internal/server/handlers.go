package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/matzehuels/waterfall/pkg/buildinfo"
	"github.com/matzehuels/waterfall/pkg/chart"
	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/pipeline"
	"github.com/matzehuels/waterfall/pkg/store"
)

// WaterfallResponse is returned by POST /api/waterfall.
type WaterfallResponse struct {
	Period string `json:"period"`
	chart.Chart
	Total  float64 `json:"total"`
	Cached bool    `json:"cached"`
}

// DashboardSummary is one entry of GET /api/dashboards.
type DashboardSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, buildinfo.Get())
}

// options merges query parameters over the server defaults.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.defaults.Copy()
	opts.Formats = []string{format}
	q := r.URL.Query()
	if v := q.Get("period"); v != "" {
		opts.Period = v
	}
	if v := q.Get("palette"); v != "" {
		opts.Palette = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "invalid %s %q", name, v)
			}
			*dst = f
		}
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "invalid refresh %q", v)
		}
		opts.Refresh = b
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (*dashboard.Payload, error) {
	return dashboard.Decode(http.MaxBytesReader(w, r.Body, s.maxBody))
}

// handleWaterfall computes a chart from a posted payload. With ?format= other
// than json the rendered artifact is returned instead of the chart JSON.
func (s *Server) handleWaterfall(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts, err := s.options(r, format)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	p, err := s.decodePayload(w, r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), p, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if format != pipeline.FormatJSON {
		writeArtifact(w, format, "waterfall", res.Artifacts[format])
		return
	}
	render.JSON(w, r, WaterfallResponse{
		Period: opts.Period,
		Chart:  res.Chart,
		Total:  res.Series.Total(),
		Cached: res.CacheInfo.SeriesHit,
	})
}

func (s *Server) handleCreateDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := s.decodePayload(w, r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	d := &store.Dashboard{Payload: *p}
	if err := s.store.Save(r.Context(), d); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.logger.Info("dashboard created", "id", d.ID, "title", d.Title)

	w.Header().Set("Location", "/api/dashboards/"+d.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, d)
}

func (s *Server) handleListDashboards(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, s.logger, wferrors.New(wferrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	out := make([]DashboardSummary, len(list))
	for i, d := range list {
		out[i] = DashboardSummary{ID: d.ID, Title: d.Title, CreatedAt: d.CreatedAt}
	}
	render.JSON(w, r, map[string]any{"dashboards": out})
}

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	render.JSON(w, r, d)
}

func (s *Server) handleDeleteDashboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.logger.Info("dashboard deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboardWaterfall(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.options(r, format)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), &d.Payload, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeArtifact(w, format, "waterfall-"+opts.Period, res.Artifacts[format])
}

func writeArtifact(w http.ResponseWriter, format, name string, data []byte) {
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	switch format {
	case pipeline.FormatPDF, pipeline.FormatXLSX:
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
