// Package receipt turns a confirmed appointment into a downloadable
// single-page PDF. The confirmation card is rasterised first and the
// bitmap is placed on an A4 page.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

const (
	pageWidthPt  = 595.28
	pageHeightPt = 841.89

	// Layout values are in card pixels; the raster is drawn at scale times
	// that size.
	scale     = 2
	padding   = 24
	lineGap   = 6
	minWidth  = 360
	bodySize  = 13
	titleSize = 17
	imageName = "confirmation"
)

// ErrUnsupportedText is returned when a record holds characters the
// receipt font cannot draw.
var ErrUnsupportedText = errors.New("receipt font has no glyph for text")

var (
	white  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ink    = color.RGBA{0x11, 0x18, 0x27, 0xff}
	muted  = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	accent = color.RGBA{0x63, 0x66, 0xf1, 0xff}
	rule   = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
)

// Go Regular covers Latin (including extended), Greek and Cyrillic.
var regularFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

func Filename(rec appointment.Record) string {
	return fmt.Sprintf("appointment-confirmation-%s.pdf", rec.ID)
}

// Render produces the PDF bytes for rec.
func Render(rec appointment.Record) ([]byte, error) {
	img, err := Rasterize(rec)
	if err != nil {
		return nil, err
	}

	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return nil, fmt.Errorf("encode confirmation image: %w", err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("Appointment Confirmation "+rec.ID, true)
	pdf.SetCreator("appointment-booking", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imageName, opts, &raster)

	bounds := img.Bounds()
	w := pageWidthPt
	h := float64(bounds.Dy()) * w / float64(bounds.Dx())
	if h > pageHeightPt {
		w = w * pageHeightPt / h
		h = pageHeightPt
	}
	pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write confirmation pdf: %w", err)
	}
	return out.Bytes(), nil
}

type line struct {
	text  string
	color color.Color
	gap   int
	title bool
	rule  bool
}

// Rasterize draws the confirmation card on a white background at twice
// its natural size.
func Rasterize(rec appointment.Record) (image.Image, error) {
	fnt, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("parse receipt font: %w", err)
	}

	lines := cardLines(rec)
	for _, l := range lines {
		if missing := missingGlyphs(fnt, l.text); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedText, string(missing))
		}
	}

	body, err := newFace(fnt, bodySize)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	title, err := newFace(fnt, titleSize)
	if err != nil {
		return nil, err
	}
	defer title.Close()

	faceFor := func(l line) font.Face {
		if l.title {
			return title
		}
		return body
	}

	pad := padding * scale
	width := minWidth * scale
	height := 2 * pad
	for _, l := range lines {
		face := faceFor(l)
		if w := font.MeasureString(face, l.text).Ceil() + 2*pad; w > width {
			width = w
		}
		height += face.Metrics().Height.Ceil() + l.gap*scale
	}

	card := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(card, card.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	y := pad
	for _, l := range lines {
		face := faceFor(l)
		lineHeight := face.Metrics().Height.Ceil()
		y += l.gap * scale
		if l.rule {
			r := image.Rect(pad, y+lineHeight/2, width-pad, y+lineHeight/2+scale)
			draw.Draw(card, r, image.NewUniform(rule), image.Point{}, draw.Src)
		} else {
			d := font.Drawer{
				Dst:  card,
				Src:  image.NewUniform(l.color),
				Face: face,
				Dot:  fixed.P(pad, y+face.Metrics().Ascent.Ceil()),
			}
			d.DrawString(l.text)
		}
		y += lineHeight
	}

	return card, nil
}

func newFace(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load receipt face: %w", err)
	}
	return face, nil
}

// missingGlyphs lists the runes of text that fnt cannot draw.
func missingGlyphs(fnt *opentype.Font, text string) []rune {
	var (
		buf     sfnt.Buffer
		missing []rune
	)
	for _, r := range text {
		idx, err := fnt.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing
}

func cardLines(rec appointment.Record) []line {
	return []line{
		{text: "Appointment Confirmed!", color: accent, title: true},
		{text: "Your appointment has been successfully booked", color: muted, gap: lineGap},
		{text: "Name", color: muted, gap: 3 * lineGap},
		{text: rec.Name, color: ink},
		{text: "Phone Number", color: muted, gap: 2 * lineGap},
		{text: rec.Phone, color: ink},
		{text: "Date", color: muted, gap: 2 * lineGap},
		{text: rec.Date, color: ink},
		{text: "Time", color: muted, gap: 2 * lineGap},
		{text: rec.Time, color: ink},
		{rule: true, gap: lineGap},
		{text: "Appointment ID", color: muted, gap: lineGap},
		{text: rec.ID, color: ink},
	}
}
