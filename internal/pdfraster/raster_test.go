package pdfraster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc struct {
	bounds []image.Rectangle
	failOn map[int]bool
	dpis   []float64
	closed bool
}

func (d *fakeDoc) NumPage() int { return len(d.bounds) }

func (d *fakeDoc) Bound(n int) (image.Rectangle, error) { return d.bounds[n], nil }

func (d *fakeDoc) ImageDPI(n int, dpi float64) (*image.RGBA, error) {
	d.dpis = append(d.dpis, dpi)
	if d.failOn[n] {
		return nil, errors.New("render failed")
	}
	// transparent page with one black pixel
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Set(1, 1, color.Black)
	return img, nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func TestScale(t *testing.T) {
	// A4 portrait: 595 x 842 pt at 150 DPI is about 10.9 MP, under the cap.
	assert.InDelta(t, 150.0/72, Scale(595, 842, Options{}), 1e-9)

	// A0: 2384 x 3370 pt would be about 35 MP; clamp to 16 MP.
	s := Scale(2384, 3370, Options{})
	mp := (2384 * s) * (3370 * s) / 1_000_000
	assert.InDelta(t, 16, mp, 1e-6)
	assert.Less(t, s, 150.0/72)

	custom := Scale(100, 100, Options{TargetDPI: 300, MaxMegapixels: 100})
	assert.InDelta(t, 300.0/72, custom, 1e-9)
}

func TestPageName(t *testing.T) {
	assert.Equal(t, "Denah_Lantai_1_p1.webp", PageName("Denah Lantai 1.pdf", 1))
	assert.Equal(t, "site-plan_v2_p12.webp", PageName("site-plan_v2.PDF", 12))
	assert.Equal(t, "archive_tar_p3.webp", PageName("archive.tar.gz", 3))
	assert.Equal(t, "noext_p1.webp", PageName("noext", 1))
}

func TestFlattenFillsWhite(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(11, 10, color.RGBA{R: 255, A: 255})

	out := Flatten(src)
	assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(1, 0))
}

func TestConvert(t *testing.T) {
	doc := &fakeDoc{
		bounds: []image.Rectangle{
			image.Rect(0, 0, 595, 842),
			image.Rect(0, 0, 595, 842),
			image.Rect(0, 0, 2384, 3370),
		},
		failOn: map[int]bool{1: true},
	}

	var progress [][2]int
	pages, err := Convert(context.Background(), doc, "Denah.pdf", Options{}, func(cur, total int) {
		progress = append(progress, [2]int{cur, total})
	})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
	require.Len(t, pages, 2)
	assert.Equal(t, "Denah_p1.webp", pages[0].Name)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Denah_p3.webp", pages[1].Name)
	assert.Equal(t, 3, pages[1].Number)

	assert.InDelta(t, 150, doc.dpis[0], 1e-9)
	assert.Less(t, doc.dpis[2], 150.0)
	assert.False(t, math.IsNaN(doc.dpis[2]))

	cfg, err := webp.DecodeConfig(bytes.NewReader(pages[0].Data))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)
}

func TestConvertEmptyDocument(t *testing.T) {
	_, err := Convert(context.Background(), &fakeDoc{}, "x.pdf", Options{}, nil)
	assert.ErrorIs(t, err, ErrUnreadablePDF)
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := &fakeDoc{bounds: []image.Rectangle{image.Rect(0, 0, 10, 10)}}
	_, err := Convert(ctx, doc, "x.pdf", Options{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("definitely not a pdf"))
	assert.ErrorIs(t, err, ErrUnreadablePDF)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	assert.True(t, IsPDF([]byte("\n %PDF-1.4")))
	assert.False(t, IsPDF([]byte("PK\x03\x04")))
	assert.False(t, IsPDF(nil))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "plan.pdf", BaseName(`C:\drawings\plan.pdf`))
	assert.Equal(t, "plan.pdf", BaseName("/tmp/x/plan.pdf"))
	assert.Equal(t, "plan.pdf", BaseName("plan.pdf"))
}
