package storage

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxImageSize is the largest banner image accepted, 2 MiB.
	MaxImageSize = 2 << 20

	keyPrefix = "images/"
)

var (
	ErrUnsupportedImage = errors.New("must be a jpeg, png, gif or webp image")
	ErrImageTooLarge    = errors.New("must not be larger than 2MB")
	ErrEmptyImage       = errors.New("must not be empty")
	ErrInvalidPath      = errors.New("invalid image path")
)

// Upload is an image received from a client. Filename is informational only,
// the stored name is always generated.
type Upload struct {
	Filename string
	Data     []byte
}

// ImageStore persists banner images and returns the path recorded on the blog.
type ImageStore interface {
	Save(ctx context.Context, u Upload) (string, error)
	Delete(ctx context.Context, path string) error
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage sniffs the content type from the leading bytes and returns it
// together with the file extension used for storage.
func DetectImage(data []byte) (contentType, ext string, err error) {
	contentType = http.DetectContentType(data)

	ext, ok := imageTypes[contentType]
	if !ok {
		return "", "", ErrUnsupportedImage
	}

	return contentType, ext, nil
}

// Validate checks size and type of an upload before anything is stored.
func (u Upload) Validate() error {
	switch {
	case len(u.Data) == 0:
		return ErrEmptyImage
	case len(u.Data) > MaxImageSize:
		return ErrImageTooLarge
	}

	_, _, err := DetectImage(u.Data)
	return err
}

func newKey(ext string) string {
	return keyPrefix + uuid.NewString() + ext
}

// keyName returns the file name of a stored path and rejects anything that
// was not produced by newKey.
func keyName(p string) (string, error) {
	if !strings.HasPrefix(p, keyPrefix) {
		return "", ErrInvalidPath
	}

	name := path.Base(p)
	if name != strings.TrimPrefix(p, keyPrefix) || name == "." || name == ".." {
		return "", ErrInvalidPath
	}

	return name, nil
}
