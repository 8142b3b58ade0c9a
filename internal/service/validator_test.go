package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-auth/internal/models"
	"application-auth/internal/roles"
	"application-auth/internal/storage"
	"application-auth/internal/token"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestValidateAccessToken_Accepted(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	rs := roles.NewSet(roles.User, roles.Admin)
	access, err := svc.crypto.Sign(42, rs, false, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	rec := &models.TokenRecord{
		ID:              mustUUID(t),
		UserID:          42,
		AccessTokenHash: token.Hash(access),
		IsActive:        true,
	}
	st.EXPECT().ActiveByAccessHash(gomock.Any(), token.Hash(access)).Return(rec, nil)

	principal, err := svc.ValidateAccessToken(context.Background(), access)
	require.NoError(t, err)
	require.Equal(t, int64(42), principal.UserID)
	require.True(t, principal.Roles.Has(roles.User))
	require.True(t, principal.Roles.Has(roles.Admin))
}

func TestValidateAccessToken_RefreshAsBearer_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Криптографически валидный refresh-токен: до хранилища дело не доходит.
	refresh, err := svc.crypto.Sign(42, roles.NewSet(roles.User), true, time.Now().UTC(), time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(context.Background(), refresh)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidateAccessToken_Garbage_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.ValidateAccessToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidateAccessToken_Expired_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	access, err := svc.crypto.Sign(42, roles.NewSet(roles.User), false, time.Now().UTC().Add(-time.Hour), time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(context.Background(), access)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidateAccessToken_Revoked_Rejected(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	access, err := svc.crypto.Sign(42, roles.NewSet(roles.User), false, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	// Записи нет: logout или ротация уже вытеснили пару.
	st.EXPECT().ActiveByAccessHash(gomock.Any(), token.Hash(access)).
		Return(nil, storage.ErrNotFound)

	_, err = svc.ValidateAccessToken(context.Background(), access)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidateAccessToken_StorageFault_FailsClosed(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	access, err := svc.crypto.Sign(42, roles.NewSet(roles.User), false, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	st.EXPECT().ActiveByAccessHash(gomock.Any(), token.Hash(access)).
		Return(nil, errors.New("connection refused"))

	_, err = svc.ValidateAccessToken(context.Background(), access)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidateAccessToken_OwnerMismatch_Rejected(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	access, err := svc.crypto.Sign(42, roles.NewSet(roles.User), false, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	rec := &models.TokenRecord{
		ID:              mustUUID(t),
		UserID:          99, // запись принадлежит другому пользователю
		AccessTokenHash: token.Hash(access),
		IsActive:        true,
	}
	st.EXPECT().ActiveByAccessHash(gomock.Any(), token.Hash(access)).Return(rec, nil)

	_, err = svc.ValidateAccessToken(context.Background(), access)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidateAccessToken_AfterLogout_Rejected(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := activeUser(t, 42, "user@example.com", "Passw0rd", roles.User)

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)
	st.EXPECT().SaveTokenRecord(gomock.Any(), gomock.Any()).Return(nil)

	pair, _, err := svc.Login(ctx, "user@example.com", "Passw0rd")
	require.NoError(t, err)

	st.EXPECT().UserByID(gomock.Any(), int64(42)).Return(user, nil)
	st.EXPECT().DeactivateAllByUser(gomock.Any(), int64(42)).Return(nil)
	require.NoError(t, svc.Logout(ctx, 42))

	// После logout активной записи нет.
	st.EXPECT().ActiveByAccessHash(gomock.Any(), token.Hash(pair.AccessToken)).
		Return(nil, storage.ErrNotFound)

	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestValidationResult(t *testing.T) {
	t.Parallel()

	require.Equal(t, "accepted", validationResult(nil))
	require.Equal(t, "rejected", validationResult(storage.ErrNotFound))
	require.Equal(t, "failed", validationResult(errors.New("timeout")))
}
