package upload

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
)

type diskStore struct {
	dir string
	now func() time.Time
}

// NewDiskStore stores uploads as files under dir, creating it if needed.
func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &diskStore{dir: dir, now: time.Now}, nil
}

func (s *diskStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, contentType, err := sniff(fh)
	if err != nil {
		return "", err
	}
	defer src.Close()

	token := tokenFor(contentType, s.now())
	dst, err := os.OpenFile(filepath.Join(s.dir, token), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", apperr.Internal(err)
	}
	if err := dst.Close(); err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

func (s *diskStore) Delete(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, token))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *diskStore) Handler(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(s.dir)}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// filesOnly hides directories so the upload root is never listed.
type filesOnly struct {
	root http.FileSystem
}

func (d filesOnly) Open(name string) (http.File, error) {
	f, err := d.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
