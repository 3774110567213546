package cart

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
)

var errEmptyArchive = errors.New("cart: archive holds no files")

// LoadFile reads a cartridge image from disk, unpacking .gz, .zip and .7z
// archives. Archives yield their first entry.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cart: read %s: %w", path, err)
	}

	var rc io.ReadCloser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		rc, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		var zr *zip.Reader
		if zr, err = zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
			if len(zr.File) == 0 {
				return nil, fmt.Errorf("%s: %w", path, errEmptyArchive)
			}
			rc, err = zr.File[0].Open()
		}
	case ".7z":
		var sr *sevenzip.Reader
		if sr, err = sevenzip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
			if len(sr.File) == 0 {
				return nil, fmt.Errorf("%s: %w", path, errEmptyArchive)
			}
			rc, err = sr.File[0].Open()
		}
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: open archive %s: %w", path, err)
	}
	defer rc.Close()

	rom, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("cart: unpack %s: %w", path, err)
	}
	return rom, nil
}

// Fingerprint identifies an image independent of its file name.
func Fingerprint(rom []byte) uint64 {
	return xxhash.Sum64(rom)
}
