// Package storage persists uploaded product images and hands back the
// reference recorded in the product's image_url.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ImageStore writes image bytes to durable storage.
type ImageStore interface {
	// Save streams content under a name derived from filename and returns
	// the reference that dereferences to the stored bytes.
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	// Remove deletes the object behind a reference returned by Save.
	Remove(ctx context.Context, ref string) error
}

// ErrForeignReference is returned by Remove for references the store did not create.
var ErrForeignReference = errors.New("image reference does not belong to this store")

const maxBaseNameLen = 100

// GenerateName returns a collision-resistant object name: a random UUID
// joined to the sanitized base name of the uploaded file.
func GenerateName(original string) string {
	return uuid.NewString() + "_" + sanitizeBaseName(original)
}

func sanitizeBaseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	var sb strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			sb.WriteRune(c)
		default:
			sb.WriteByte('_')
		}
	}

	base := strings.TrimLeft(sb.String(), ".")
	if base == "" {
		return "image"
	}
	if len(base) > maxBaseNameLen {
		base = base[len(base)-maxBaseNameLen:]
	}
	return base
}
