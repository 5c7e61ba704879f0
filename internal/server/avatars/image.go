// Package avatars validates avatar images and stores them on an
// S3-compatible image host.
package avatars

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// MaxSize is the largest accepted avatar, in bytes.
const MaxSize = 5 << 20

var (
	ErrEmpty       = errors.New("image is empty")
	ErrTooLarge    = fmt.Errorf("image exceeds %d bytes", MaxSize)
	ErrUnsupported = errors.New("unsupported image type")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Detect sniffs the content type of data and returns it with the file
// extension used for storage.
func Detect(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", "", ErrTooLarge
	}
	contentType = http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	return contentType, ext, nil
}

// ObjectKey returns a fresh storage key for an avatar of userID.
func ObjectKey(userID, ext string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New(), ext)
}
