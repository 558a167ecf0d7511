package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/google/uuid"
)

// Store persists uploaded images and serves them back by their token.
type Store interface {
	// Save stores the file and returns the token saved on the entity.
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	// Delete removes a stored file. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
	// Handler serves GET requests for stored files under prefix.
	Handler(prefix string) http.Handler
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniff opens the upload, checks it is an image and returns a reader
// positioned at the start together with its content type.
func sniff(fh *multipart.FileHeader) (multipart.File, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, "", apperr.Internal(err)
	}
	contentType := http.DetectContentType(head[:n])
	if _, ok := allowedTypes[contentType]; !ok {
		f.Close()
		return nil, "", apperr.Validation("image must be a JPEG, PNG, GIF or WebP file")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", apperr.Internal(err)
	}
	return f, contentType, nil
}

// tokenFor builds a unique file name: upload time in milliseconds, a random
// suffix and the extension of the sniffed content type. The client's file
// name never reaches the stored name.
func tokenFor(contentType string, now time.Time) string {
	return fmt.Sprintf("%s-%s%s", strconv.FormatInt(now.UnixMilli(), 10), uuid.NewString()[:8], allowedTypes[contentType])
}

// validToken rejects names that could escape the storage root.
func validToken(token string) bool {
	return token != "" && !strings.ContainsAny(token, `/\`) && token == filepath.Base(token) && !strings.HasPrefix(token, ".")
}
