package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/server/avatars"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/repomanager"
)

// UserService serves the authenticated user's own profile.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       UserCache
	storage     AvatarStorage
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cache UserCache, storage AvatarStorage) *UserService {
	return &UserService{db: db, repomanager: m, cache: cache, storage: storage}
}

// Me returns the user, preferring the cache. Cache failures fall back to the
// database.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	if u, err := s.cache.Get(ctx, userID); err == nil {
		return u, nil
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, u)
	return u, nil
}

// UploadAvatar validates data as an image, stores it on the image host and
// points the user's avatar at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, data []byte) (*models.User, error) {
	contentType, ext, err := avatars.Detect(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	url, err := s.storage.Put(ctx, avatars.ObjectKey(userID, ext), data, contentType)
	if err != nil {
		if errors.Is(err, common.ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: upload avatar: %v", common.ErrUpstream, err)
	}

	u, err := s.repomanager.Users(s.db).UpdateAvatar(ctx, userID, url)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, userID)
	return u, nil
}
