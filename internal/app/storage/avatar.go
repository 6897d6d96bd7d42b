package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mocrs/internal/pkg/errs"
)

const (
	// MaxAvatarSize is the largest avatar a presigned upload accepts.
	MaxAvatarSize int64 = 2 << 20

	// PresignedURLDuration bounds the lifetime of every presigned URL handed out.
	PresignedURLDuration = 10 * time.Minute

	avatarPrefix = "avatars/"
)

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ValidateAvatar checks the declared type and size of an avatar upload.
func ValidateAvatar(mimeType string, size int64) *errs.CustomError {
	if _, ok := avatarExtensions[strings.ToLower(mimeType)]; !ok {
		return errs.NewError(errs.ErrInvalidAvatar)
	}
	if size <= 0 || size > MaxAvatarSize {
		return errs.NewError(errs.ErrInvalidAvatar)
	}
	return nil
}

// NewAvatarKey returns a fresh object key for an avatar of username.
// mimeType must already have passed ValidateAvatar.
func NewAvatarKey(username, mimeType string) string {
	return fmt.Sprintf("%s%s/%s%s", avatarPrefix, username, uuid.NewString(), avatarExtensions[strings.ToLower(mimeType)])
}

// OwnsAvatarKey reports whether key lies in username's avatar namespace.
func OwnsAvatarKey(username, key string) bool {
	prefix := avatarPrefix + username + "/"
	return strings.HasPrefix(key, prefix) && len(key) > len(prefix) && !strings.Contains(key[len(prefix):], "/")
}
