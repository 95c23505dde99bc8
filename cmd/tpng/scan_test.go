package main

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgryski/go-tinypng"
)

type countingRenderer struct {
	sizes []image.Rectangle
}

func (c *countingRenderer) Render(img *image.NRGBA) error {
	c.sizes = append(c.sizes, img.Bounds())
	return nil
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	img.SetNRGBA(0, 0, color.NRGBA{A: 0x80})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestScannerRun(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 3, 2)
	writePNG(t, filepath.Join(dir, "b.PNG"), 5, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("\x89PNG\r\n\x1a\nnope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte{0xff, 0xd8}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writePNG(t, filepath.Join(dir, "sub", "ignored.png"), 1, 1)

	r := &countingRenderer{}
	s := &scanner{dec: &tinypng.Decoder{Strict: true}, render: r}

	err := s.Run([]string{dir})
	assert.Error(t, err)

	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 3, 2), image.Rect(0, 0, 5, 4)}, r.sizes)
	assert.Equal(t, 2, s.printed)
	assert.Equal(t, 2, s.skipped)
	assert.Equal(t, 1, s.failed)

	var jpeg, broken bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "JPEG") {
			jpeg = true
		}
		if e.Level == logrus.ErrorLevel && strings.Contains(e.Message, "broken.png") {
			broken = true
		}
	}
	assert.True(t, jpeg)
	assert.True(t, broken)
}

func TestScannerRunFiles(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	dir := t.TempDir()
	p := filepath.Join(dir, "one.png")
	writePNG(t, p, 2, 2)

	r := &countingRenderer{}
	s := &scanner{dec: &tinypng.Decoder{}, render: r}

	require.NoError(t, s.Run([]string{p}))
	assert.Len(t, r.sizes, 1)

	s = &scanner{dec: &tinypng.Decoder{}, render: r}
	assert.Error(t, s.Run([]string{filepath.Join(dir, "missing")}))
	assert.Equal(t, 1, s.failed)
}

func TestInflateCommand(t *testing.T) {
	text := []byte(strings.Repeat("stdin to stdout ", 64))

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write(text)
	zw.Close()

	var out bytes.Buffer
	require.NoError(t, inflate(&tinypng.Decoder{Strict: true}, false, &z, &out))
	assert.Equal(t, text, out.Bytes())

	var raw bytes.Buffer
	fw, err := flate.NewWriter(&raw, flate.BestCompression)
	require.NoError(t, err)
	fw.Write(text)
	fw.Close()

	out.Reset()
	require.NoError(t, inflate(&tinypng.Decoder{}, true, &raw, &out))
	assert.Equal(t, text, out.Bytes())

	assert.Error(t, inflate(&tinypng.Decoder{}, false, strings.NewReader("x"), &out))
}
