// Package pdfraster turns PDF drawings into page-sized WebP images.
package pdfraster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"regexp"
	"strings"

	"github.com/chai2010/webp"
	"github.com/gen2brain/go-fitz"
)

const (
	pointsPerInch = 72.0

	DefaultTargetDPI     = 150
	DefaultMaxMegapixels = 16
	DefaultQuality       = 80
)

// ErrUnreadablePDF is returned when the input cannot be opened as a PDF.
var ErrUnreadablePDF = errors.New("failed to process PDF, make sure the file is not corrupted")

type Options struct {
	TargetDPI     float64
	MaxMegapixels float64
	Quality       float32
}

func (o Options) withDefaults() Options {
	if o.TargetDPI <= 0 {
		o.TargetDPI = DefaultTargetDPI
	}
	if o.MaxMegapixels <= 0 {
		o.MaxMegapixels = DefaultMaxMegapixels
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Page is one encoded output image.
type Page struct {
	Number int
	Name   string
	Width  int
	Height int
	Data   []byte
}

// ProgressFunc is called before each page is rendered.
type ProgressFunc func(current, total int)

// Document is the subset of *fitz.Document the converter needs.
type Document interface {
	NumPage() int
	Bound(pageNumber int) (image.Rectangle, error)
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Open parses a PDF held in memory.
func Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	return doc, nil
}

// Scale returns the render scale for a page measured in points.
// The target DPI is reduced so the output never exceeds maxMegapixels.
func Scale(widthPt, heightPt float64, o Options) float64 {
	o = o.withDefaults()
	scale := o.TargetDPI / pointsPerInch
	mp := (widthPt * scale) * (heightPt * scale) / 1_000_000
	if mp > o.MaxMegapixels {
		scale *= math.Sqrt(o.MaxMegapixels / mp)
	}
	return scale
}

var (
	reExt       = regexp.MustCompile(`\.[^/.]+$`)
	reNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// PageName builds "<clean base>_p<n>.webp" for a source file name.
func PageName(sourceName string, n int) string {
	clean := reExt.ReplaceAllString(sourceName, "")
	clean = reNameChars.ReplaceAllString(clean, "_")
	return fmt.Sprintf("%s_p%d.webp", clean, n)
}

// Convert renders every page of doc. Pages that fail to render are skipped.
func Convert(ctx context.Context, doc Document, sourceName string, o Options, progress ProgressFunc) ([]Page, error) {
	o = o.withDefaults()
	total := doc.NumPage()
	if total <= 0 {
		return nil, ErrUnreadablePDF
	}

	pages := make([]Page, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, total)
		}

		p, err := renderPage(doc, i, o)
		if err != nil {
			continue
		}
		p.Number = i + 1
		p.Name = PageName(sourceName, i+1)
		pages = append(pages, *p)
	}
	return pages, nil
}

func renderPage(doc Document, i int, o Options) (*Page, error) {
	bound, err := doc.Bound(i)
	if err != nil {
		return nil, err
	}
	scale := Scale(float64(bound.Dx()), float64(bound.Dy()), o)

	img, err := doc.ImageDPI(i, scale*pointsPerInch)
	if err != nil {
		return nil, err
	}

	flat := Flatten(img)
	data, err := Encode(flat, o.Quality)
	if err != nil {
		return nil, err
	}
	b := flat.Bounds()
	return &Page{Width: b.Dx(), Height: b.Dy(), Data: data}, nil
}

// Flatten composites src over an opaque white sheet.
func Flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// Encode writes img as lossy WebP.
func Encode(img image.Image, quality float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// IsPDF sniffs the magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\r\n "), []byte("%PDF-"))
}

// BaseName strips directories from a client-supplied name.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
