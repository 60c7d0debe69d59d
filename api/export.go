package api

import (
	"bytes"
	"net/http"
	"strconv"

	"brushkit/canvas"
	"brushkit/export"
	"brushkit/thumbnail"
)

var exportContentTypes = map[string]string{
	"bmp":  "image/bmp",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// exportImage converts the uploaded image to the format named by the
// filename query parameter. Remaining query parameters become encoder
// options.
func (h *handler) exportImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filename := q.Get("filename")
	if filename == "" {
		http.Error(w, "missing filename", http.StatusBadRequest)
		return
	}
	src, _, err := thumbnail.DecodeImage(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		http.Error(w, "unreadable image", http.StatusBadRequest)
		return
	}

	b := src.Bounds()
	img := canvas.NewImage(b.Dx(), b.Dy())
	img.AddLayer(canvas.NewLayer("upload", src))
	doc := canvas.NewDocument(img, filename)

	cfg := export.Configuration{}
	for k := range q {
		if k != "filename" {
			cfg[k] = q.Get(k)
		}
	}

	warnings := h.exporter.Check(doc)
	var buf bytes.Buffer
	err = h.exporter.Convert(doc, &buf, cfg)
	switch export.StatusOf(err) {
	case export.OK:
	case export.UnsupportedFormat:
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	default:
		h.log.Error(err, "export failed", "filename", filename)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[export.FormatOf(filename)])
	w.Header().Set("X-Export-Warnings", strconv.Itoa(len(warnings)))
	_, _ = w.Write(buf.Bytes())
}
