package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate key")
	ErrAlreadyLiked = errors.New("target already liked by this user")
	ErrLikeNotFound = errors.New("like not found")
)

// translate maps GORM's translated driver errors onto the repository
// sentinels. Connections are opened with TranslateError, so unique
// violations from every driver arrive as gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
