// Package thumbnail renders the shareable card for a finished experience:
// the page's own palette and headline, with the hero image inset when one
// exists. Rendering is local; no generative call is involved.
package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/alexmorgen/vibeforge/internal/models"
)

const (
	cardWidth  = 1200
	cardHeight = 630
)

// Card is everything the renderer needs from a snapshot.
type Card struct {
	User        string
	Headline    string
	CTA         string
	Design      models.DesignSystem
	HeroDataURL string
}

// Render produces a PNG share card. fontPath may be empty; the built-in
// bitmap face is used then, which is ugly but never fails.
func Render(card Card, fontPath string) ([]byte, error) {
	dc := gg.NewContext(cardWidth, cardHeight)

	bg := parseHex(card.Design.BackgroundColor, color.NRGBA{R: 0xF7, G: 0xF5, B: 0xF2, A: 0xFF})
	primary := parseHex(card.Design.PrimaryColor, color.NRGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 0xFF})
	accent := parseHex(card.Design.AccentColor, color.NRGBA{R: 0xE0, G: 0x5A, B: 0x33, A: 0xFF})

	dc.SetColor(bg)
	dc.Clear()

	// Accent band along the bottom.
	dc.SetColor(accent)
	dc.DrawRectangle(0, cardHeight-24, cardWidth, 24)
	dc.Fill()

	textWidth := float64(cardWidth) - 120
	if card.HeroDataURL != "" {
		if hero, err := decodeHero(card.HeroDataURL); err == nil {
			inset := scaleInto(hero, 420, 420)
			dc.DrawImage(inset, cardWidth-470, 105)
			textWidth = float64(cardWidth) - 560
		}
	}

	if fontPath != "" {
		if face, err := loadFontFace(fontPath, 64); err == nil {
			dc.SetFontFace(face)
		}
	}
	dc.SetColor(primary)
	dc.DrawStringWrapped(card.Headline, 60, 140, 0, 0, textWidth, 1.3, gg.AlignLeft)

	if card.CTA != "" {
		dc.SetColor(accent)
		dc.DrawStringWrapped(strings.ToUpper(card.CTA), 60, cardHeight-140, 0, 0, textWidth, 1.2, gg.AlignLeft)
	}
	if card.User != "" {
		dc.SetColor(primary)
		dc.DrawString(fmt.Sprintf("made for %s", card.User), 60, cardHeight-60)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFontFace(path string, points float64) (font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

func decodeHero(dataURL string) (image.Image, error) {
	_, payload, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		return nil, fmt.Errorf("hero is not a base64 data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode hero: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode hero image: %w", err)
	}
	return img, nil
}

// scaleInto fits img inside w x h preserving aspect ratio.
func scaleInto(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	dw := int(float64(b.Dx()) * scale)
	dh := int(float64(b.Dy()) * scale)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func parseHex(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}
