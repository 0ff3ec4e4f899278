package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}

func TestPrepareBareBase64(t *testing.T) {
	svc := NewService(1 << 20)
	encoded := base64.StdEncoding.EncodeToString(pngFixture(t))

	out, err := svc.Prepare(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(out)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	// 統一轉出 JPEG
	if _, format, err := image.Decode(bytes.NewReader(decoded)); err != nil || format != "jpeg" {
		t.Errorf("decoded format = %q, err = %v, want jpeg", format, err)
	}
	if strings.Contains(out, ",") {
		t.Error("output must not carry a data URI prefix")
	}
}

func TestPrepareDataURI(t *testing.T) {
	svc := NewService(1 << 20)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngFixture(t))

	if _, err := svc.Prepare(context.Background(), uri); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
}

func TestPrepareURL(t *testing.T) {
	fixture := pngFixture(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(fixture)
	}))
	defer server.Close()

	svc := NewService(1 << 20)
	if _, err := svc.Prepare(context.Background(), server.URL+"/photo.png"); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
}

func TestPrepareRejectsOversized(t *testing.T) {
	svc := NewService(8)
	encoded := base64.StdEncoding.EncodeToString(pngFixture(t))

	if _, err := svc.Prepare(context.Background(), encoded); err == nil {
		t.Error("expected size limit error")
	}
}

func TestPrepareRejectsInvalidInput(t *testing.T) {
	svc := NewService(1 << 20)
	ctx := context.Background()

	cases := []string{
		"",
		"not-base64!!!",
		"data:image/png;base64",
		base64.StdEncoding.EncodeToString([]byte("plain text, not an image")),
	}
	for _, input := range cases {
		if _, err := svc.Prepare(ctx, input); err == nil {
			t.Errorf("Prepare(%q) expected error", input)
		}
	}
}

func TestPrepareURLDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewService(1 << 20)
	if _, err := svc.Prepare(context.Background(), server.URL); err == nil {
		t.Error("expected download error")
	}
}

func TestValidate(t *testing.T) {
	svc := NewService(1 << 20)
	ctx := context.Background()

	encoded := base64.StdEncoding.EncodeToString(pngFixture(t))
	if err := svc.Validate(ctx, encoded); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := svc.Validate(ctx, "garbage"); err == nil {
		t.Error("expected validation failure")
	}
}
