package export

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Configuration carries per-format encoder options such as "quality" for
// jpeg or "compression" for tiff.
type Configuration map[string]string

func (c Configuration) intValue(key string, def int) int {
	if v, ok := c[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

type encoder func(w io.Writer, img image.Image, cfg Configuration) error

var encoders = map[string]encoder{
	"bmp": func(w io.Writer, img image.Image, _ Configuration) error {
		return bmp.Encode(w, img)
	},
	"png": func(w io.Writer, img image.Image, _ Configuration) error {
		return png.Encode(w, img)
	},
	"jpg":  encodeJPEG,
	"jpeg": encodeJPEG,
	"gif": func(w io.Writer, img image.Image, _ Configuration) error {
		return gif.Encode(w, img, nil)
	},
	"tif":  encodeTIFF,
	"tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image, cfg Configuration) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: cfg.intValue("quality", jpeg.DefaultQuality)})
}

func encodeTIFF(w io.Writer, img image.Image, cfg Configuration) error {
	opts := &tiff.Options{Compression: tiff.Uncompressed}
	switch cfg["compression"] {
	case "deflate":
		opts.Compression = tiff.Deflate
	case "lzw":
		opts.Compression = tiff.LZW
	}
	return tiff.Encode(w, img, opts)
}

// Formats lists the format identifiers SaveImage accepts.
func Formats() []string {
	out := make([]string, 0, len(encoders))
	for f := range encoders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FormatOf returns the lowercase extension of filename without the dot.
func FormatOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 || strings.ContainsAny(filename[i:], `/\`) {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// SaveImage encodes img to w in the given format.
func SaveImage(w io.Writer, img image.Image, format string, cfg Configuration) error {
	enc, ok := encoders[format]
	if !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
	if err := enc(w, img, cfg); err != nil {
		return errors.Wrapf(err, "encode %s", format)
	}
	return nil
}
