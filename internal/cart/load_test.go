package cart

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadFile_Raw(t *testing.T) {
	rom := buildROM("RAW", 0x00, 0x00, 0x00, 32*1024)
	got, err := LoadFile(writeFile(t, "game.gb", rom))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(got, rom) {
		t.Fatalf("raw image changed on load")
	}
}

func TestLoadFile_Gzip(t *testing.T) {
	rom := buildROM("GZ", 0x00, 0x00, 0x00, 32*1024)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(rom)
	zw.Close()

	got, err := LoadFile(writeFile(t, "game.gb.gz", buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if Fingerprint(got) != Fingerprint(rom) {
		t.Fatalf("gzip image fingerprint mismatch")
	}
}

func TestLoadFile_ZipFirstEntry(t *testing.T) {
	rom := buildROM("ZIP", 0x00, 0x00, 0x00, 32*1024)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("game.gb")
	w.Write(rom)
	w2, _ := zw.Create("readme.txt")
	w2.Write([]byte("hello"))
	zw.Close()

	got, err := LoadFile(writeFile(t, "game.ZIP", buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(got, rom) {
		t.Fatalf("zip entry mismatch")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.gb")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadFile_BadArchive(t *testing.T) {
	if _, err := LoadFile(writeFile(t, "broken.7z", []byte("not an archive"))); err == nil {
		t.Fatalf("expected error for corrupt 7z")
	}
}

func TestFingerprintDiffers(t *testing.T) {
	a := buildROM("A", 0x00, 0x00, 0x00, 32*1024)
	b := buildROM("B", 0x00, 0x00, 0x00, 32*1024)
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("distinct images share a fingerprint")
	}
}
