package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	byName map[string]*template.Template
}

func mustParsePages() *pages {
	p := &pages{byName: make(map[string]*template.Template)}
	for _, name := range []string{"form", "confirmation"} {
		p.byName[name] = template.Must(template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return p
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (p *pages) render(w http.ResponseWriter, logger *zap.Logger, name string, status int, data any) {
	var buf bytes.Buffer
	if err := p.byName[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
