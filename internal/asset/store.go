package asset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/inamate/vecdraw/internal/typeid"
)

var ErrNotFound = errors.New("asset not found")

// Store keeps uploaded bitmaps as PNG files named by asset ID.
type Store struct {
	dir string // directory to store asset files
}

// NewStore creates a store in dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Stored describes a saved bitmap.
type Stored struct {
	ID     string
	File   string
	Width  int
	Height int
}

// Save decodes a PNG or JPEG from r and stores it as PNG.
func (s *Store) Save(r io.Reader) (Stored, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Stored{}, fmt.Errorf("decode image: %w", err)
	}

	id := typeid.NewAssetID()
	filename := id + ".png"
	path := filepath.Join(s.dir, filename)

	out, err := os.Create(path)
	if err != nil {
		return Stored{}, fmt.Errorf("create asset file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(path)
		return Stored{}, fmt.Errorf("encode png: %w", err)
	}

	b := img.Bounds()
	return Stored{ID: id, File: filename, Width: b.Dx(), Height: b.Dy()}, nil
}

// Image loads a stored bitmap. The ID is validated so it cannot escape dir.
func (s *Store) Image(assetID string) (image.Image, error) {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	f, err := os.Open(filepath.Join(s.dir, assetID+".png"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, assetID)
		}
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", assetID, err)
	}
	return img, nil
}

// Delete removes an asset file from disk.
func (s *Store) Delete(assetID string) error {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if err := os.Remove(filepath.Join(s.dir, assetID+".png")); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, assetID)
	}
	return nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }
