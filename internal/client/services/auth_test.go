package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/addressbook/internal/client/client"
	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/dmitrijs2005/addressbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_PersistsSession(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{loginPair: &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}}
	s := NewAuthService(fc, db)

	require.NoError(t, s.Login(context.Background(), "ann@example.org", []byte("secret")))

	assert.Equal(t, "secret", fc.lastPassword)
	email, ok := getMeta(t, db, metadata.KeyEmail)
	require.True(t, ok)
	assert.Equal(t, "ann@example.org", email)
	rt, _ := getMeta(t, db, metadata.KeyRefreshToken)
	assert.Equal(t, "r1", rt)
}

func TestLogin_ErrorLeavesNoSession(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{loginErr: fmt.Errorf("wrap: %w", common.ErrInvalidCredentials)}
	s := NewAuthService(fc, db)

	err := s.Login(context.Background(), "ann@example.org", []byte("bad"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, ok := getMeta(t, db, metadata.KeyEmail)
	assert.False(t, ok)
}

func TestRotatedTokensArePersisted(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{}
	NewAuthService(fc, db)

	fc.emit(models.TokenPair{AccessToken: "a9", RefreshToken: "r9"})

	rt, ok := getMeta(t, db, metadata.KeyRefreshToken)
	require.True(t, ok)
	assert.Equal(t, "r9", rt)
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing saved", func(t *testing.T) {
		s := NewAuthService(&fakeClient{}, setupDB(t))
		_, err := s.Resume(ctx)
		require.ErrorIs(t, err, client.ErrNotLoggedIn)
	})

	t.Run("restores and rotates", func(t *testing.T) {
		db := setupDB(t)
		fc := &fakeClient{
			loginPair:   &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"},
			refreshPair: &models.TokenPair{AccessToken: "a2", RefreshToken: "r2"},
		}
		s := NewAuthService(fc, db)
		require.NoError(t, s.Login(ctx, "ann@example.org", []byte("secret")))
		fc.SetTokens("", "")

		email, err := s.Resume(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.org", email)
		assert.Equal(t, "r1", fc.refreshSeen)

		rt, _ := getMeta(t, db, metadata.KeyRefreshToken)
		assert.Equal(t, "r2", rt)
	})

	t.Run("rejected session is wiped", func(t *testing.T) {
		db := setupDB(t)
		fc := &fakeClient{loginPair: &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}}
		s := NewAuthService(fc, db)
		require.NoError(t, s.Login(ctx, "ann@example.org", []byte("secret")))
		fc.refreshErr = fmt.Errorf("x: %w", common.ErrInvalidToken)

		_, err := s.Resume(ctx)
		require.ErrorIs(t, err, common.ErrInvalidToken)

		_, ok := getMeta(t, db, metadata.KeyEmail)
		assert.False(t, ok)
		_, refresh := fc.Tokens()
		assert.Empty(t, refresh)
	})

	t.Run("server down keeps session", func(t *testing.T) {
		db := setupDB(t)
		fc := &fakeClient{loginPair: &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}}
		s := NewAuthService(fc, db)
		require.NoError(t, s.Login(ctx, "ann@example.org", []byte("secret")))
		fc.refreshErr = client.ErrUnavailable

		_, err := s.Resume(ctx)
		require.ErrorIs(t, err, client.ErrUnavailable)

		_, ok := getMeta(t, db, metadata.KeyEmail)
		assert.True(t, ok)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears session", func(t *testing.T) {
		db := setupDB(t)
		fc := &fakeClient{loginPair: &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}}
		s := NewAuthService(fc, db)
		require.NoError(t, s.Login(ctx, "ann@example.org", []byte("secret")))

		require.NoError(t, s.Logout(ctx))
		assert.True(t, fc.logoutCalled)
		_, ok := getMeta(t, db, metadata.KeyRefreshToken)
		assert.False(t, ok)
	})

	t.Run("already revoked token is fine", func(t *testing.T) {
		fc := &fakeClient{logoutErr: fmt.Errorf("x: %w", common.ErrInvalidToken)}
		s := NewAuthService(fc, setupDB(t))
		require.NoError(t, s.Logout(ctx))
	})

	t.Run("transport error is reported but session wiped", func(t *testing.T) {
		db := setupDB(t)
		fc := &fakeClient{loginPair: &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}}
		s := NewAuthService(fc, db)
		require.NoError(t, s.Login(ctx, "ann@example.org", []byte("secret")))
		fc.logoutErr = client.ErrUnavailable

		require.ErrorIs(t, s.Logout(ctx), client.ErrUnavailable)
		_, ok := getMeta(t, db, metadata.KeyEmail)
		assert.False(t, ok)
	})
}

func TestRegister_PassesPassword(t *testing.T) {
	fc := &fakeClient{registerUser: &models.User{Email: "ann@example.org"}}
	s := NewAuthService(fc, setupDB(t))

	u, err := s.Register(context.Background(), "ann@example.org", []byte("secret"), "ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.org", u.Email)
	assert.Equal(t, "secret", fc.lastPassword)
}

func TestUploadAvatar(t *testing.T) {
	orig := readFile
	t.Cleanup(func() { readFile = orig })
	ctx := context.Background()

	fc := &fakeClient{}
	s := NewAuthService(fc, setupDB(t))

	readFile = func(string) ([]byte, error) { return []byte("img"), nil }
	u, err := s.UploadAvatar(ctx, "/tmp/me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", u.AvatarURL)
	assert.Equal(t, "/tmp/me.png", fc.uploadName)
	assert.Equal(t, []byte("img"), fc.uploadData)

	readFile = func(string) ([]byte, error) { return nil, nil }
	_, err = s.UploadAvatar(ctx, "/tmp/empty.png")
	require.ErrorIs(t, err, common.ErrValidation)

	readFile = func(string) ([]byte, error) { return make([]byte, maxAvatarSize+1), nil }
	_, err = s.UploadAvatar(ctx, "/tmp/big.png")
	require.ErrorIs(t, err, common.ErrValidation)

	boom := errors.New("boom")
	readFile = func(string) ([]byte, error) { return nil, boom }
	_, err = s.UploadAvatar(ctx, "/tmp/missing.png")
	require.ErrorIs(t, err, boom)
}

func TestClose_ClosesClientAndDB(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{}
	s := NewAuthService(fc, db)

	require.NoError(t, s.Close(context.Background()))
	assert.True(t, fc.closed)
	assert.Error(t, db.Ping())
}
