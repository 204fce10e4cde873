package handlers

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"certview/internal/logger"
	"certview/internal/version"
	"certview/internal/view"
	"certview/middleware"
)

const maxQueryLength = 256

type buttonTemplateData struct {
	Label string
	State string
}

type tableTemplateData struct {
	Rows      []view.Row
	RevokeURL string
	Query     string
	Total     int
	Shown     int
	Seq       uint64
}

type indexTemplateData struct {
	Button         buttonTemplateData
	Notice         *view.Notice
	Pending        bool
	Table          tableTemplateData
	AppVersionText string
}

// ParseTemplates loads templates/*.html and index.html from webFS.
func ParseTemplates(webFS fs.FS) (*template.Template, error) {
	templates, err := template.New("").Funcs(templateFuncMap()).ParseFS(webFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	indexData, err := fs.ReadFile(webFS, "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := templates.New("index.html").Parse(string(indexData)); err != nil {
		return nil, err
	}
	return templates, nil
}

// RegisterUIRoutes serves the console page and its fragments.
func RegisterUIRoutes(router chi.Router, console *Console, templates *template.Template, mutations func(http.Handler) http.Handler) {
	if mutations == nil {
		mutations = func(next http.Handler) http.Handler { return next }
	}

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		query := searchQuery(r)
		data := indexTemplateData{
			Button:         buttonData(console),
			Notice:         console.notice(),
			Pending:        console.Controller.Pending(),
			Table:          tableData(console, query),
			AppVersionText: version.Version,
		}
		renderTemplate(w, r, templates, "index.html", data)
	})

	router.Get("/ui/certs", func(w http.ResponseWriter, r *http.Request) {
		renderTemplate(w, r, templates, "certs-table", tableData(console, searchQuery(r)))
	})

	router.With(mutations).Post("/ui/toggle", func(w http.ResponseWriter, r *http.Request) {
		state := console.Controller.Toggle(r.Context())
		logger.HTTPEvent(r.Method, r.URL.Path, http.StatusOK, 0).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("state", state.String()).
			Msg("toggled certificate view")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	router.With(mutations).Post("/ui/refresh", func(w http.ResponseWriter, r *http.Request) {
		seq := console.Controller.Refresh(r.Context())
		logger.HTTPEvent(r.Method, r.URL.Path, http.StatusOK, 0).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Uint64("seq", seq).
			Msg("refreshing certificate view")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func buttonData(console *Console) buttonTemplateData {
	return buttonTemplateData{Label: console.Label.Text(), State: console.Controller.State().String()}
}

func tableData(console *Console, query string) tableTemplateData {
	snap := console.snapshot(query)
	return tableTemplateData{
		Rows:      snap.Rows,
		RevokeURL: console.RevokeURL,
		Query:     query,
		Total:     snap.Total,
		Shown:     len(snap.Rows),
		Seq:       snap.Marker.Seq,
	}
}

func searchQuery(r *http.Request) string {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) <= maxQueryLength {
		return query
	}
	cut := maxQueryLength
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut]
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templates *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.HTTPError(r.Method, r.URL.Path, http.StatusInternalServerError, err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("template", name).
			Msg("failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
