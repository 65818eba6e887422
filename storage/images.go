// Package storage keeps uploaded product images on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
)

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

var unsafeChars = regexp.MustCompile(`[^\w\-]`)

// ImageStore stores an uploaded blob and returns its public reference.
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Delete(ref string) error
}

// LocalImageStore writes into Dir and serves from PublicPath,
// e.g. Dir=/var/www/uploads/products, PublicPath=/uploads/products.
type LocalImageStore struct {
	Dir        string
	PublicPath string
	now        func() time.Time
}

func NewLocalImageStore(dir, publicPath string) *LocalImageStore {
	return &LocalImageStore{Dir: dir, PublicPath: strings.TrimRight(publicPath, "/"), now: time.Now}
}

// SanitizeFilename returns "<base><ext>" with a lowercased allowed extension
// and every character outside [A-Za-z0-9_-] in the base replaced by "_".
func SanitizeFilename(name string) (string, error) {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedImageExt[ext] {
		return "", apperr.Validation("image must be png, jpg, jpeg or gif")
	}
	base := name[:len(name)-len(ext)]
	// Drop repeated image extensions like "photo.jpg.jpg".
	for {
		e := strings.ToLower(filepath.Ext(base))
		if e == "" || !allowedImageExt[e] {
			break
		}
		base = base[:len(base)-len(e)]
	}
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "image"
	}
	return base + ext, nil
}

func (s *LocalImageStore) Save(file *multipart.FileHeader) (string, error) {
	clean, err := SanitizeFilename(file.Filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}
	filename := fmt.Sprintf("%d_%s", s.now().UnixNano(), clean)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := writeFile(filepath.Join(s.Dir, filename), src); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path.Join(s.PublicPath, filename), nil
}

// writeFile copies src to dst. A failed write leaves no file behind.
func writeFile(dst string, src io.Reader) (err error) {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()
	_, err = io.Copy(out, src)
	return err
}

// Delete removes the file behind ref; a missing file is not an error.
func (s *LocalImageStore) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
