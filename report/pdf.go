package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"investment-research/llm"
)

const (
	pdfFont      = "Arial"
	pdfFontSize  = 10.0
	pdfLineH     = 5.0
	pdfPageWidth = 180.0
)

// PDFRenderer lays the Markdown form of an analysis out with fpdf.
type PDFRenderer struct {
	md goldmark.Markdown
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

func (p *PDFRenderer) Format() Format { return FormatPDF }

func (p *PDFRenderer) Render(a *llm.Analysis) ([]byte, error) {
	return p.Convert(Markdown(a), fmt.Sprintf("%s Investment Research", a.Ticker))
}

// Convert renders Markdown source to PDF bytes.
func (p *PDFRenderer) Convert(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfFontSize)

	source := []byte(markdown)
	doc := p.md.Parser().Parse(text.NewReader(source))

	r := &pdfWriter{
		pdf:    pdf,
		source: source,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	size      float64
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfWriter) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	size := r.size
	if size == 0 {
		size = pdfFontSize
	}
	r.pdf.SetFont(pdfFont, style, size)
}

func (r *pdfWriter) write(s string) {
	r.pdf.Write(pdfLineH, r.tr(s))
}

func (r *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(4)
			r.size = headingSize(node.Level)
			r.bold = true
			if node.Level == 1 {
				r.pdf.SetTextColor(20, 50, 110)
			}
		} else {
			r.size = 0
			r.bold = false
			r.pdf.SetTextColor(0, 0, 0)
			r.pdf.Ln(8)
		}
		r.updateFont()
	case *ast.Paragraph:
		if !entering {
			if r.listLevel == 0 {
				r.pdf.Ln(7)
			}
		}
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(pdfLineH)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", pdfFontSize)
			r.write(nodeText(node, r.source))
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.codeBlock(n.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(7)
			}
		}
	case *ast.ListItem:
		if entering {
			if node.PreviousSibling() != nil {
				r.pdf.Ln(pdfLineH)
			}
			r.pdf.SetX(15 + float64(r.listLevel)*5)
			r.write("- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(4)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func headingSize(level int) float64 {
	switch level {
	case 1:
		return 18
	case 2:
		return 13
	case 3:
		return 11
	default:
		return pdfFontSize
	}
}

func (r *pdfWriter) codeBlock(lines *text.Segments) {
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 4.5, r.tr(strings.TrimRight(string(line.Value(r.source)), "\n")), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(3)
}

func (r *pdfWriter) table(t *extast.Table) {
	var rows [][]string
	for child := t.FirstChild(); child != nil; child = child.NextSibling() {
		var row []string
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			row = append(row, nodeText(cell, r.source))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	colW := pdfPageWidth / float64(len(rows[0]))
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(pdfFont, "B", 9)
			r.pdf.SetFillColor(225, 230, 240)
		} else {
			r.pdf.SetFont(pdfFont, "", 9)
			r.pdf.SetFillColor(255, 255, 255)
		}
		for _, cell := range row {
			r.pdf.CellFormat(colW, 6, r.tr(cell), "1", 0, "L", true, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(4)
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
