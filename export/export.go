// Package export flattens a layered document and writes it through the
// image codec matching the document's file extension.
package export

import (
	"io"

	"github.com/pkg/errors"

	"brushkit/canvas"
)

// Status is the outcome reported to the host pipeline.
type Status int

const (
	OK Status = iota
	UnsupportedFormat
	CreationError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case UnsupportedFormat:
		return "unsupported-format"
	case CreationError:
		return "creation-error"
	}
	return "unknown"
}

// StatusOf maps a Convert result to a Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrUnsupportedFormat):
		return UnsupportedFormat
	default:
		return CreationError
	}
}

// BMPExport is the raster export filter. Despite the name it writes any
// format SaveImage knows, picked by the document's filename extension.
type BMPExport struct {
	caps *Capabilities
}

// NewBMPExport returns the filter with its capabilities registered.
func NewBMPExport() *BMPExport {
	e := &BMPExport{caps: NewCapabilities()}
	e.InitializeCapabilities()
	return e
}

// InitializeCapabilities declares the single supported input pair and the
// per-layer colour model check. Calling it again changes nothing.
func (e *BMPExport) InitializeCapabilities() {
	e.caps.AddSupportedColorModels([][2]string{
		{"", ""},
		{string(canvas.RGBA), string(canvas.Integer8)},
	}, "BMP")
	e.caps.AddCapability(ColorModelPerLayerCheck(canvas.RGBA, canvas.Integer8), LevelSupported)
}

func (e *BMPExport) Capabilities() *Capabilities { return e.caps }

// Convert flattens doc and writes it to w. The codec's error is returned
// as is; use StatusOf for the host status.
func (e *BMPExport) Convert(doc *canvas.Document, w io.Writer, cfg Configuration) error {
	img := doc.Image()
	rect := img.Bounds()
	flat := img.Projection().ConvertToImage(rect, canvas.InternalRenderingIntent(), canvas.InternalConversionFlags())
	return SaveImage(w, flat, FormatOf(doc.Filename()), cfg)
}

// Check returns warnings for layers the export will convert.
func (e *BMPExport) Check(doc *canvas.Document) []Warning {
	return e.caps.Check(doc)
}
