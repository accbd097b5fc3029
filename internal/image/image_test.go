package image

import (
	"os"
	"path/filepath"
	"testing"
)

// minimal valid 1x1 PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pngBytes, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"screenshot.png", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"animation.gif", true},
		{"modern.webp", true},
		{"document.md", false},
		{"code.go", false},
		{"data.json", false},
	}

	for _, tt := range tests {
		if got := IsImageFile(tt.path); got != tt.expected {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestLoadAndToRef(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "tiny.png")

	info, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.MediaType != "image/png" {
		t.Errorf("media type = %q", info.MediaType)
	}
	if info.Size != len(pngBytes) {
		t.Errorf("size = %d, want %d", info.Size, len(pngBytes))
	}

	ref := info.ToRef()
	if !ref.Valid() {
		t.Fatal("ref should be valid")
	}
	if ref.MimeType != "image/png" || ref.DataURL != "data:image/png;base64,"+ref.Base64Data {
		t.Errorf("ref not composed per the data-URL invariant: %+v", ref)
	}
}

func TestLoadRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "note.txt")
	os.WriteFile(txt, []byte("hello"), 0644)

	if _, err := Load(txt); err == nil {
		t.Error("expected unsupported format error")
	}

	// Supported extension but non-image content
	fake := filepath.Join(dir, "fake.png")
	os.WriteFile(fake, []byte("not a png at all"), 0644)
	if _, err := Load(fake); err == nil {
		t.Error("expected content sniff failure")
	}

	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected not-found error")
	}
}

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png")
	writePNG(t, dir, "b.png")
	os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0644)

	refs, err := LoadBatch(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Fatalf("want 2 refs, got %d", len(refs))
	}

	// All-or-none: one corrupt member fails the whole batch.
	os.WriteFile(filepath.Join(dir, "c.png"), []byte("corrupt"), 0644)
	if _, err := LoadBatch(filepath.Join(dir, "*.png")); err == nil {
		t.Error("expected batch failure with corrupt member")
	}

	if _, err := LoadBatch(filepath.Join(dir, "*.bmp")); err == nil {
		t.Error("expected no-match error")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
