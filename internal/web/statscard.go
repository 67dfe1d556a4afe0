package web

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fogleman/gg"

	"reclamebot/internal/store"
)

// Card styling constants — rendered at 2x scale so the PNG stays crisp when
// shared in chat apps.
const (
	cardWidth     = 1200
	titlePadding  = 110
	tileHeight    = 150
	tileGap       = 24
	tableHeaderH  = 72
	rowHeight     = 64
	cellPaddingX  = 20
	footerPadding = 70
	fontSize      = 24
	headerFontSz  = 24
	titleFontSz   = 38
	tileValueSz   = 52
	tileLabelSz   = 22
	marginX       = 40.0
)

// Light theme colors
var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	tileBgColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}   // Blue
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255} // Subtle blue-gray
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255} // Slate border
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
	completedColor  = color.RGBA{R: 22, G: 163, B: 74, A: 255}   // Green
	failedColor     = color.RGBA{R: 220, G: 38, B: 38, A: 255}   // Red
)

// tile is one headline counter on the card.
type tile struct {
	label string
	value string
	color color.RGBA
}

// cardColumn defines one column of the recent-records table.
type cardColumn struct {
	header string
	width  float64
	field  func(r *store.Record) string
}

var cardColumns = []cardColumn{
	{"Complaint", 200, func(r *store.Record) string { return cardTruncate(r.ComplaintID, 14) }},
	{"Customer", 260, func(r *store.Record) string { return cardTruncate(r.CustomerName, 18) }},
	{"Status", 160, func(r *store.Record) string { return r.Status }},
	{"Processed", 220, func(r *store.Record) string { return r.CreatedAt.Format("02 Jan 15:04") }},
	{"Response", 0, func(r *store.Record) string { return cardTruncate(r.ResponseText, 34) }},
}

// findFont locates a font file across Linux and Windows paths.
func findFont(bold bool) string {
	var candidates []string
	if runtime.GOOS == "windows" {
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{
				winRoot + `\Fonts\arialbd.ttf`,
				winRoot + `\Fonts\Arial Bold.ttf`,
			}
		} else {
			candidates = []string{
				winRoot + `\Fonts\arial.ttf`,
				winRoot + `\Fonts\Arial.ttf`,
			}
		}
	} else {
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			}
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return candidates[0]
}

// RenderStatsCard renders the aggregate counters and the most recent records
// as a PNG image.
func RenderStatsCard(stats store.Stats, recent []store.Record) ([]byte, error) {
	if len(recent) > 8 {
		recent = recent[:8]
	}

	boldFont := findFont(true)
	regularFont := findFont(false)

	tiles := []tile{
		{"Total processed", fmt.Sprintf("%d", stats.Total), titleColor},
		{"Completed", fmt.Sprintf("%d", stats.Completed), completedColor},
		{"Failed", fmt.Sprintf("%d", stats.Failed), failedColor},
		{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate), headerBgColor},
	}

	tableH := 0.0
	if len(recent) > 0 {
		tableH = float64(tableHeaderH) + float64(len(recent))*rowHeight + 40
	}
	canvasHeight := float64(titlePadding) + float64(tileHeight) + tileGap +
		tableH + float64(footerPadding)

	dc := gg.NewContext(cardWidth, int(canvasHeight))

	// Background
	dc.SetColor(bgColor)
	dc.Clear()

	// Title
	if err := dc.LoadFontFace(boldFont, titleFontSz); err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	dc.SetColor(titleColor)
	title := fmt.Sprintf("Complaint Bot — Statistics  —  %s", time.Now().Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(title, cardWidth/2, float64(titlePadding)/2+2, 0.5, 0.5)

	// Headline tiles
	tileW := (float64(cardWidth) - 2*marginX - 3*tileGap) / 4
	tileY := float64(titlePadding)
	for i, tl := range tiles {
		x := marginX + float64(i)*(tileW+tileGap)

		dc.SetColor(tileBgColor)
		dc.DrawRoundedRectangle(x, tileY, tileW, float64(tileHeight), 16)
		dc.Fill()
		dc.SetColor(borderColor)
		dc.SetLineWidth(1)
		dc.DrawRoundedRectangle(x, tileY, tileW, float64(tileHeight), 16)
		dc.Stroke()

		dc.LoadFontFace(boldFont, tileValueSz)
		dc.SetColor(tl.color)
		dc.DrawStringAnchored(tl.value, x+tileW/2, tileY+float64(tileHeight)/2-14, 0.5, 0.5)

		dc.LoadFontFace(regularFont, tileLabelSz)
		dc.SetColor(footerColor)
		dc.DrawStringAnchored(tl.label, x+tileW/2, tileY+float64(tileHeight)-32, 0.5, 0.5)
	}

	// Recent records table
	if len(recent) > 0 {
		tableX := marginX
		tableY := tileY + float64(tileHeight) + tileGap + 20
		totalWidth := float64(cardWidth) - 2*marginX

		// The zero-width column absorbs the remaining space.
		widths := make([]float64, len(cardColumns))
		used := 0.0
		flexible := -1
		for i, col := range cardColumns {
			widths[i] = col.width
			if col.width == 0 {
				flexible = i
			} else {
				used += col.width
			}
		}
		if flexible >= 0 {
			widths[flexible] = totalWidth - used
		}

		// Header row
		dc.SetColor(headerBgColor)
		dc.DrawRoundedRectangle(tableX, tableY, totalWidth, float64(tableHeaderH), 12)
		dc.Fill()

		dc.LoadFontFace(boldFont, headerFontSz)
		dc.SetColor(headerTextColor)
		x := tableX
		for i, col := range cardColumns {
			dc.DrawStringAnchored(col.header, x+widths[i]/2, tableY+float64(tableHeaderH)/2, 0.5, 0.5)
			x += widths[i]
		}

		// Data rows
		dc.LoadFontFace(regularFont, fontSize)
		curY := tableY + float64(tableHeaderH)
		for rowIdx := range recent {
			r := &recent[rowIdx]

			if rowIdx%2 == 0 {
				dc.SetColor(rowEvenColor)
			} else {
				dc.SetColor(rowOddColor)
			}
			dc.DrawRectangle(tableX, curY, totalWidth, rowHeight)
			dc.Fill()

			dc.SetColor(borderColor)
			dc.SetLineWidth(0.5)
			dc.DrawLine(tableX, curY+rowHeight, tableX+totalWidth, curY+rowHeight)
			dc.Stroke()

			x := tableX
			for i, col := range cardColumns {
				if col.header == "Status" && r.Status == store.StatusFailed {
					dc.SetColor(failedColor)
				} else if col.header == "Status" {
					dc.SetColor(completedColor)
				} else {
					dc.SetColor(textColor)
				}
				dc.DrawStringAnchored(col.field(r), x+cellPaddingX, curY+rowHeight/2, 0, 0.5)
				x += widths[i]
			}
			curY += rowHeight
		}

		// Outer table border
		dc.SetColor(borderColor)
		dc.SetLineWidth(1)
		dc.DrawRoundedRectangle(tableX, tableY, totalWidth, float64(tableHeaderH)+float64(len(recent))*rowHeight, 12)
		dc.Stroke()
	}

	// Footer
	dc.LoadFontFace(regularFont, 22)
	dc.SetColor(footerColor)
	footer := fmt.Sprintf("Showing %d most recent of %d processed complaints", len(recent), stats.Total)
	dc.DrawStringAnchored(footer, cardWidth/2, canvasHeight-28, 0.5, 0.5)

	return encodeImage(dc.Image())
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func cardTruncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		return string(runes[:maxLen]) + "…"
	}
	return s
}
