// Package render produces the per-language transcript PDFs delivered after
// enrichment.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"stitcher/internal/services"
)

// Document holds the content of one rendered PDF.
type Document struct {
	LanguageName string
	LanguageCode string
	Transcript   string
	Translation  string
	CreatedAt    time.Time
}

// fontCandidates are scanned in order for a Unicode font. Cyrillic transcripts
// do not survive the latin-1 core fonts, so a TTF is strongly preferred.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/noto/NotoSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
}

// Client renders one transcript document into a directory and returns the
// written file path.
type Client interface {
	Render(doc Document, dir string) (string, error)
}

// Renderer writes transcript documents as PDF files.
type Renderer struct {
	fontPath string
}

// New builds a Renderer, locating a Unicode font if one is installed.
func New() *Renderer {
	return &Renderer{fontPath: findFont()}
}

// Render writes doc as a PDF into dir and returns the file path. The file is
// named from the language code so one enrichment produces distinct files.
func (r *Renderer) Render(doc Document, dir string) (string, error) {
	if strings.TrimSpace(doc.Transcript) == "" && strings.TrimSpace(doc.Translation) == "" {
		return "", services.Wrap(services.ErrRender, "render", "input", "document has no content", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrRender, "render", "create output dir", dir, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	if r.fontPath != "" {
		family = "unicode"
		pdf.AddUTF8Font(family, "", r.fontPath)
		pdf.AddUTF8Font(family, "B", r.fontPath)
	}
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	write := func(text string) string { return text }
	if r.fontPath == "" {
		// Core fonts are latin-1 only; drop what cannot be encoded rather
		// than emit mojibake.
		translator := pdf.UnicodeTranslatorFromDescriptor("")
		write = translator
	}

	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	pdf.SetFont(family, "B", 16)
	pdf.MultiCell(0, 9, write(fmt.Sprintf("Transcript (%s)", doc.LanguageName)), "", "L", false)
	pdf.SetFont(family, "", 9)
	pdf.MultiCell(0, 5, write("Generated "+created.Format("2006-01-02 15:04 MST")), "", "L", false)
	pdf.Ln(4)

	if strings.TrimSpace(doc.Transcript) != "" {
		pdf.SetFont(family, "B", 12)
		pdf.MultiCell(0, 7, write("Original"), "", "L", false)
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 6, write(doc.Transcript), "", "L", false)
		pdf.Ln(4)
	}
	if strings.TrimSpace(doc.Translation) != "" {
		pdf.SetFont(family, "B", 12)
		pdf.MultiCell(0, 7, write(doc.LanguageName), "", "L", false)
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 6, write(doc.Translation), "", "L", false)
	}

	path := filepath.Join(dir, fmt.Sprintf("transcript_%s.pdf", sanitizeCode(doc.LanguageCode)))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", services.Wrap(services.ErrRender, "render", "write pdf", path, err)
	}
	return path, nil
}

func sanitizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	var b strings.Builder
	for _, r := range code {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "doc"
	}
	return b.String()
}

func findFont() string {
	for _, candidate := range fontCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
