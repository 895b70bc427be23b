package imagefile

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSupported(t *testing.T) {
	cases := map[string]bool{
		"a.png":          true,
		"B.JPG":          true,
		"scan.tiff":      true,
		"frame.webp":     true,
		"shot.heic":      true,
		"notes.txt":      false,
		"project.mmproj": false,
		"noext":          false,
	}
	for path, want := range cases {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDecodePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cap.png")
	writePNG(t, path, 8, 6)

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("dimensions: got %v", img.Bounds())
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, err := Decode(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestListImagesNumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"capture_10.png", "capture_2.png", "Capture_1.png", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	want := []string{"Capture_1.png", "capture_2.png", "capture_10.png"}
	if len(paths) != len(want) {
		t.Fatalf("got %d entries: %v", len(paths), paths)
	}
	for i, w := range want {
		if filepath.Base(paths[i]) != w {
			t.Errorf("entry %d: got %q, want %q", i, filepath.Base(paths[i]), w)
		}
	}
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	thumb := Thumbnail(src, 80)
	if thumb.Bounds().Dx() != 80 || thumb.Bounds().Dy() != 20 {
		t.Errorf("thumbnail size: got %v", thumb.Bounds())
	}

	small := image.NewRGBA(image.Rect(0, 0, 40, 30))
	if Thumbnail(small, 80) != image.Image(small) {
		t.Error("small image should be returned unscaled")
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}
