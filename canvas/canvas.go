// Package canvas holds a layered raster image and its flattened projection.
package canvas

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ColorModelID and DepthID identify a layer's pixel format.
type (
	ColorModelID string
	DepthID      string
)

const (
	RGBA  ColorModelID = "RGBA"
	GRAYA ColorModelID = "GRAYA"
	CMYKA ColorModelID = "CMYKA"

	Integer8  DepthID = "U8"
	Integer16 DepthID = "U16"
)

// Layer is one paint layer. Pixels are placed at Offset in image space.
type Layer struct {
	Name    string
	Pixels  image.Image
	Offset  image.Point
	Opacity uint8
	Visible bool
}

// NewLayer returns a visible, fully opaque layer at the origin.
func NewLayer(name string, pixels image.Image) *Layer {
	return &Layer{Name: name, Pixels: pixels, Opacity: 255, Visible: true}
}

// ColorSpace reports the colour model and channel depth of the layer's
// pixel storage.
func (l *Layer) ColorSpace() (ColorModelID, DepthID) {
	if l.Pixels == nil {
		return RGBA, Integer8
	}
	switch l.Pixels.(type) {
	case *image.RGBA64, *image.NRGBA64:
		return RGBA, Integer16
	case *image.Gray:
		return GRAYA, Integer8
	case *image.Gray16:
		return GRAYA, Integer16
	case *image.CMYK:
		return CMYKA, Integer8
	}
	switch l.Pixels.ColorModel() {
	case color.RGBA64Model, color.NRGBA64Model:
		return RGBA, Integer16
	case color.GrayModel:
		return GRAYA, Integer8
	case color.Gray16Model:
		return GRAYA, Integer16
	case color.CMYKModel:
		return CMYKA, Integer8
	}
	return RGBA, Integer8
}

func (l *Layer) bounds() image.Rectangle {
	b := l.Pixels.Bounds()
	return b.Sub(b.Min).Add(l.Offset)
}

// Image is a stack of layers, bottom first, over a fixed canvas rectangle.
type Image struct {
	bounds image.Rectangle
	layers []*Layer
}

// NewImage returns an empty width x height image.
func NewImage(width, height int) *Image {
	return &Image{bounds: image.Rect(0, 0, width, height)}
}

func (img *Image) Bounds() image.Rectangle { return img.bounds }

// AddLayer puts l on top of the stack.
func (img *Image) AddLayer(l *Layer) {
	img.layers = append(img.layers, l)
}

// Layers returns the stack, bottom first.
func (img *Image) Layers() []*Layer {
	out := make([]*Layer, len(img.layers))
	copy(out, img.layers)
	return out
}

// Projection returns the flattened view of the image.
func (img *Image) Projection() *Projection {
	return &Projection{img: img}
}

// Projection composites the visible layers of an Image.
type Projection struct {
	img *Image
}

// ConvertToImage flattens rect into an 8-bit non-premultiplied RGBA buffer
// with origin (0, 0). Layers are composited bottom-up with source-over at
// their opacity. All layers are sRGB, so every intent and flag combination
// yields the same pixels.
func (p *Projection) ConvertToImage(rect image.Rectangle, intent RenderingIntent, flags ConversionFlags) *image.NRGBA {
	acc := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for _, l := range p.img.layers {
		if !l.Visible || l.Opacity == 0 || l.Pixels == nil {
			continue
		}
		area := l.bounds().Intersect(rect)
		if area.Empty() {
			continue
		}
		dst := area.Sub(rect.Min)
		src := area.Min.Sub(l.Offset).Add(l.Pixels.Bounds().Min)
		mask := image.NewUniform(color.Alpha{A: l.Opacity})
		draw.DrawMask(acc, dst, l.Pixels, src, mask, image.Point{}, draw.Over)
	}
	out := image.NewNRGBA(acc.Bounds())
	draw.Draw(out, out.Bounds(), acc, image.Point{}, draw.Src)
	return out
}

// Document owns an image and the filename it is exported to.
type Document struct {
	image    *Image
	filename string
}

// NewDocument wraps img for export under filename.
func NewDocument(img *Image, filename string) *Document {
	return &Document{image: img, filename: filename}
}

func (d *Document) Image() *Image { return d.image }

func (d *Document) Filename() string { return d.filename }
