package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	pagerender "github.com/KaramelBytes/bikedash/internal/render"
	"github.com/KaramelBytes/bikedash/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// viewsHandler serves pages, chart images and table downloads.
type viewsHandler struct {
	s *Server
}

// Routes mounts under /views.
func (h *viewsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{view}", h.page)
	r.Get("/{view}/charts/{chart}.png", h.chart)
	r.Get("/{view}/tables/{table}.{format}", h.table)
	return r
}

// APIRoutes mounts under /api/views.
func (h *viewsHandler) APIRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{view}", h.pageJSON)
	return r
}

type viewLink struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Href   string `json:"href"`
	Active bool   `json:"-"`
}

func navLinks(active string) []viewLink {
	out := make([]viewLink, len(views.All))
	for i, v := range views.All {
		out[i] = viewLink{Slug: v.Slug(), Title: v.Title(), Href: "/views/" + v.Slug(), Active: v.Slug() == active}
	}
	return out
}

// build parses the view URL parameter and builds its page.
func (h *viewsHandler) build(r *http.Request) (*pagerender.Page, error) {
	v, err := views.Parse(chi.URLParam(r, "view"))
	if err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := views.Build(v, h.s.load, views.Options{HeadRows: h.s.cfg.HeadRows})
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.s.metrics.pageBuilds.WithLabelValues(v.Slug(), outcome).Observe(time.Since(start).Seconds())
	return p, err
}

func (h *viewsHandler) page(w http.ResponseWriter, r *http.Request) {
	p, err := h.build(r)
	if err != nil {
		h.htmlError(w, r, err)
		return
	}
	var buf bytes.Buffer
	data := struct {
		Nav     []viewLink
		Page    *pagerender.Page
		Formats []pagerender.Format
	}{navLinks(p.Slug), p, pagerender.Formats}
	if err := pageTmpl.Execute(&buf, data); err != nil {
		h.htmlError(w, r, fmt.Errorf("template: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *viewsHandler) chart(w http.ResponseWriter, r *http.Request) {
	p, err := h.build(r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	id := chi.URLParam(r, "chart")
	c, ok := p.Chart(id)
	if !ok {
		h.apiError(w, r, fmt.Errorf("chart %q: %w", id, errNotFound))
		return
	}
	var buf bytes.Buffer
	if err := pagerender.PNG(&buf, c, h.s.cfg.ChartWidthIn, h.s.cfg.ChartHeightIn); err != nil {
		h.apiError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=300")
	_, _ = buf.WriteTo(w)
}

func (h *viewsHandler) table(w http.ResponseWriter, r *http.Request) {
	format, err := pagerender.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	p, err := h.build(r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	id := chi.URLParam(r, "table")
	t, ok := p.Table(id)
	if !ok {
		h.apiError(w, r, fmt.Errorf("table %q: %w", id, errNotFound))
		return
	}
	var buf bytes.Buffer
	if err := pagerender.Export(&buf, t, format); err != nil {
		h.apiError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.ID+"."+string(format)))
	_, _ = buf.WriteTo(w)
}

func (h *viewsHandler) list(w http.ResponseWriter, r *http.Request) {
	links := navLinks("")
	for i := range links {
		links[i].Href = "/api/views/" + links[i].Slug
	}
	renderJSON(w, r, links)
}

func (h *viewsHandler) pageJSON(w http.ResponseWriter, r *http.Request) {
	p, err := h.build(r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	renderJSON(w, r, p)
}

func (h *viewsHandler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	e := toAPIError(r, err)
	h.logFailure(r, e, err)
	_ = render.Render(w, r, e)
}

func (h *viewsHandler) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	e := toAPIError(r, err)
	h.logFailure(r, e, err)
	http.Error(w, fmt.Sprintf("%s: %s", http.StatusText(e.StatusCode), e.Message), e.StatusCode)
}

func (h *viewsHandler) logFailure(r *http.Request, e *APIError, err error) {
	log := h.s.log.Warn
	if e.StatusCode >= http.StatusInternalServerError {
		log = h.s.log.Error
	}
	log("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", e.StatusCode),
		zap.String("error_code", e.ErrorCode),
		zap.Error(err),
		zap.String("request_id", e.RequestID),
	)
}

func renderJSON(w http.ResponseWriter, r *http.Request, v any) {
	render.JSON(w, r, v)
}
