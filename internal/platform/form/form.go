// Package form decodes create requests sent either as multipart/form-data
// (with an optional file part) or as a JSON object.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
)

// Values holds the decoded text fields and the uploaded file, if any.
type Values struct {
	fields map[string][]string
	file   *multipart.FileHeader
}

// Parse reads the request body. Bodies larger than maxBytes are rejected.
func Parse(w http.ResponseWriter, r *http.Request, maxBytes int64, fileField string) (*Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r, maxBytes, fileField)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		return &Values{fields: r.PostForm}, nil
	default:
		return parseJSON(r)
	}
}

func parseMultipart(r *http.Request, maxBytes int64, fileField string) (*Values, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, bodyError(err)
	}
	v := &Values{fields: r.MultipartForm.Value}
	if files := r.MultipartForm.File[fileField]; len(files) > 0 {
		v.file = files[0]
	}
	return v, nil
}

func parseJSON(r *http.Request) (*Values, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, bodyError(err)
	}

	fields := make(map[string][]string, len(raw))
	for k, val := range raw {
		switch t := val.(type) {
		case nil:
		case []interface{}:
			for _, item := range t {
				fields[k] = append(fields[k], fmt.Sprint(item))
			}
		default:
			fields[k] = []string{fmt.Sprint(t)}
		}
	}
	return &Values{fields: fields}, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Validation(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return apperr.Validation("invalid request body")
}

// String returns the first value of key, trimmed.
func (v *Values) String(key string) string {
	if vals := v.fields[key]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// Strings returns every value of key. Comma-separated values are split,
// blanks dropped and duplicates removed. The result is never nil.
func (v *Values) Strings(key string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, val := range v.fields[key] {
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

// Bool parses key as a boolean; absent or unparsable values are false.
func (v *Values) Bool(key string) bool {
	b, _ := strconv.ParseBool(v.String(key))
	return b
}

// File returns the uploaded file header, or nil.
func (v *Values) File() *multipart.FileHeader {
	return v.file
}
