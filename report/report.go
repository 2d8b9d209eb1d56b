// Package report renders an analysis into a downloadable document.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"investment-research/llm"
	"investment-research/logging"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatLaTeX Format = "latex"
)

// ParseFormat accepts pdf, latex or tex, case-insensitively. Empty means pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "latex", "tex":
		return FormatLaTeX, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

func (f Format) Extension() string {
	if f == FormatLaTeX {
		return ".tex"
	}
	return ".pdf"
}

func (f Format) ContentType() string {
	if f == FormatLaTeX {
		return "application/x-tex"
	}
	return "application/pdf"
}

// FileType is the short type stored alongside a saved report.
func (f Format) FileType() string {
	return strings.TrimPrefix(f.Extension(), ".")
}

// Document is a rendered report. Path is set once it is written to disk.
type Document struct {
	Format   Format
	Filename string
	Path     string
	Data     []byte
}

func (d *Document) Size() int64 { return int64(len(d.Data)) }

type Renderer interface {
	Format() Format
	Render(a *llm.Analysis) ([]byte, error)
}

// BaseName is the file stem for a ticker's report on day t.
func BaseName(ticker string, t time.Time) string {
	return fmt.Sprintf("%s_Investment_Research_%s", strings.ToUpper(ticker), t.Format("20060102"))
}

// Generator renders documents and writes them under a directory.
type Generator struct {
	dir       string
	renderers map[Format]Renderer
	logger    arbor.ILogger
	now       func() time.Time
}

func NewGenerator(dir string, logger arbor.ILogger) *Generator {
	if logger == nil {
		logger = logging.Get()
	}
	return &Generator{
		dir: dir,
		renderers: map[Format]Renderer{
			FormatPDF:   NewPDFRenderer(),
			FormatLaTeX: NewLaTeXRenderer(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithRenderer replaces the renderer for its format.
func (g *Generator) WithRenderer(r Renderer) *Generator {
	g.renderers[r.Format()] = r
	return g
}

func fallbackFor(f Format) Format {
	if f == FormatPDF {
		return FormatLaTeX
	}
	return FormatPDF
}

// Generate renders a in the requested format, falling back to the other
// format when rendering fails, and writes the result to disk.
func (g *Generator) Generate(a *llm.Analysis, format Format) (*Document, error) {
	data, used, err := g.render(a, format)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	doc := &Document{
		Format:   used,
		Filename: BaseName(a.Ticker, g.now()) + used.Extension(),
		Data:     data,
	}
	doc.Path = filepath.Join(g.dir, doc.Filename)
	if err := os.WriteFile(doc.Path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	g.logger.Info().
		Str("ticker", a.Ticker).
		Str("format", string(used)).
		Str("path", doc.Path).
		Int("bytes", len(data)).
		Msg("Report generated")
	return doc, nil
}

func (g *Generator) render(a *llm.Analysis, format Format) ([]byte, Format, error) {
	var errs []error
	for _, f := range []Format{format, fallbackFor(format)} {
		r, ok := g.renderers[f]
		if !ok {
			continue
		}
		data, err := r.Render(a)
		if err == nil {
			return data, f, nil
		}
		g.logger.Warn().Str("format", string(f)).Err(err).Msg("Report rendering failed")
		errs = append(errs, fmt.Errorf("%s: %w", f, err))
	}
	return nil, "", fmt.Errorf("render report: %w", errors.Join(errs...))
}
