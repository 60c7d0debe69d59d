package api_test

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"
	"testing"

	"golang.org/x/image/bmp"
)

func pngBody(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(5, 3, color.NRGBA{G: 255, A: 255})); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestExportBMP(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodPost, "/api/export?filename=out.bmp", pngBody(t))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/bmp" {
		t.Fatalf("expected image/bmp, got %q", ct)
	}
	if w := resp.Header.Get("X-Export-Warnings"); w != "0" {
		t.Fatalf("expected no warnings for an RGBA upload, got %q", w)
	}
	img, err := bmp.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 3 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodPost, "/api/export?filename=out.xcf", pngBody(t))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.StatusCode)
	}
}

func TestExportMissingFilename(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodPost, "/api/export", pngBody(t))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
