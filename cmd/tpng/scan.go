package main

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dgryski/go-tinypng"
)

type imageRenderer interface {
	Render(img *image.NRGBA) error
}

type scanner struct {
	dec    *tinypng.Decoder
	render imageRenderer

	printed int
	failed  int
	skipped int
}

// Run prints every PNG named in paths. Directories are read one level deep
// in name order. Files that fail to decode are logged and counted; Run
// returns an error when any did.
func (s *scanner) Run(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			logrus.Errorf("unable to stat %s: %s", p, err)
			s.failed++
			continue
		}

		if !info.IsDir() {
			s.file(p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			logrus.Errorf("unable to read directory %s: %s", p, err)
			s.failed++
			continue
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			s.file(filepath.Join(p, e.Name()))
		}
	}

	logrus.Debugf("printed %d, skipped %d, failed %d", s.printed, s.skipped, s.failed)

	if s.failed > 0 {
		return errors.Errorf("%d file(s) could not be printed", s.failed)
	}

	return nil
}

func (s *scanner) file(path string) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		if err := s.printPNG(path); err != nil {
			logrus.Errorf("%s: %s", path, err)
			s.failed++
			return
		}
		s.printed++
	case ".jpg", ".jpeg":
		logrus.Warnf("%s: JPEG decoding is not supported", path)
		s.skipped++
	default:
		logrus.Warnf("%s: extension %q not supported", path, ext)
		s.skipped++
	}
}

func (s *scanner) printPNG(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "error reading file")
	}

	img, err := s.dec.Decode(data)
	if err != nil {
		return errors.Wrap(err, "error decoding image")
	}

	h := img.Header
	logrus.Debugf("%s: %dx%d %s, %d-bit", path, h.Width, h.Height, h.ColorType, h.BitDepth)

	if err := s.render.Render(img.NRGBA()); err != nil {
		return errors.Wrap(err, "error printing image")
	}

	return nil
}
