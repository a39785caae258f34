package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/park285/simple-ai-chess/internal/adapter/chesspresenter"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
)

//go:embed templates/index.html
var templateFS embed.FS

type pageData struct {
	Title         string
	Hint          string
	RestartPrompt string
	RestartButton string
	State         chessdto.GameState
	Lines         []string
}

type pageRenderer struct {
	tmpl *template.Template
	// labels are resolved once; the catalog does not change while serving
	title, hint, restartPrompt, restartButton string
}

func newPageRenderer(f *chesspresenter.Formatter) (*pageRenderer, error) {
	tmpl, err := template.New("index.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &pageRenderer{
		tmpl:          tmpl,
		title:         f.Label("page.title", "Play Chess with Simple AI"),
		hint:          f.Label("page.hint", ""),
		restartPrompt: f.Label("page.restart_prompt", "Do you need to Restart?"),
		restartButton: f.Label("page.restart_button", "Restart Game"),
	}, nil
}

func (p *pageRenderer) render(w io.Writer, st chessdto.GameState, lines []string) error {
	return p.tmpl.Execute(w, pageData{
		Title:         p.title,
		Hint:          p.hint,
		RestartPrompt: p.restartPrompt,
		RestartButton: p.restartButton,
		State:         st,
		Lines:         lines,
	})
}
