package main

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRunImage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "hello.png")
	pal := filepath.Join(dir, "palette")
	if err := os.WriteFile(pal, []byte("! two colors\norange\nblack\n"), 0666); err != nil {
		t.Fatal(err)
	}

	*backend, *pngFile, *palette, *wait, *fontName = "image", out, pal, 0, ""
	if err := run(); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1024 || b.Dy() != 768 {
		t.Errorf("image is %v", b)
	}

	*backend = "nosuch"
	if err := run(); err == nil {
		t.Error("run with unknown backend succeeded")
	}
}

func TestProfiledFailure(t *testing.T) {
	dir := t.TempDir()
	want := errors.New("draw failed")
	if err := profiled(dir, func() error { return want }); err != want {
		t.Fatalf("profiled returned %v, want %v", err, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("no profile written: %v", err)
	}
}
