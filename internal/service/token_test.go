package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
	"github.com/iliyamo/online-store/internal/utils"
)

type fakeUsers struct {
	rows map[uint64]model.User
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{rows: map[uint64]model.User{}}
	for _, u := range users {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, id uint64, token string, exp time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.RefreshToken = &token
	u.RefreshTokenExp = &exp
	f.rows[id] = u
	return nil
}

func (f *fakeUsers) FindByRefreshToken(_ context.Context, id uint64, token string) (model.User, error) {
	u, ok := f.rows[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != token {
		return model.User{}, errs.ErrNotFound
	}
	if u.RefreshTokenExp == nil || !u.RefreshTokenExp.After(time.Now().UTC()) {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id uint64, token string, exp time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpires = &exp
	u.ResetCode = nil
	u.ResetCodeExpires = nil
	f.rows[id] = u
	return nil
}

func (f *fakeUsers) SetResetCode(_ context.Context, id uint64, code string, exp time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.ResetCode = &code
	u.ResetCodeExpires = &exp
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	f.rows[id] = u
	return nil
}

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func newTestTokenService(users *fakeUsers) *TokenService {
	return NewTokenService(users, testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func testUser() model.User {
	return model.User{ID: 1, Email: "a@example.com", Role: "USER", IsActive: true}
}

func TestIssuePairPersistsRefreshToken(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)

	pair, err := svc.IssuePair(context.Background(), 1, "a@example.com", "USER")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.True(t, pair.RefreshExp.After(pair.AccessExp), "refresh must outlive access")

	stored := users.rows[1]
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, pair.RefreshToken, *stored.RefreshToken)

	// the two tokens verify only against their own secret
	id, err := utils.ParseSubject(testAccessSecret, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	_, err = utils.ParseSubject(testAccessSecret, pair.RefreshToken)
	require.Error(t, err)
}

func TestRotateIssuesFreshPair(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, 1, "a@example.com", "USER")
	require.NoError(t, err)

	rotated, u, err := svc.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, uint64(1), u.ID)

	stored := users.rows[1]
	require.Equal(t, rotated.RefreshToken, *stored.RefreshToken,
		"the stored value must follow the rotation")
}

func TestRotateRejectsTokenNotOnRecord(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)
	ctx := context.Background()

	_, err := svc.IssuePair(ctx, 1, "a@example.com", "USER")
	require.NoError(t, err)

	// well-signed refresh token for the same user that was never stored:
	// this is what a rotated-away token looks like to the server
	stale, err := utils.NewRefreshToken(testRefreshSecret, 1, time.Hour)
	require.NoError(t, err)

	_, _, err = svc.Rotate(ctx, stale.Token)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestRotateRejectsForgedAndGarbageTokens(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)
	ctx := context.Background()

	forged, err := utils.NewRefreshToken("not-the-refresh-secret", 1, time.Hour)
	require.NoError(t, err)

	_, _, err = svc.Rotate(ctx, forged.Token)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, _, err = svc.Rotate(ctx, "not.a.jwt")
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestRotateRejectsExpiredStoredToken(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, 1, "a@example.com", "USER")
	require.NoError(t, err)

	// force the stored expiry into the past; the signature still verifies
	// but the stored-value check must fail
	past := time.Now().UTC().Add(-time.Minute)
	u := users.rows[1]
	u.RefreshTokenExp = &past
	users.rows[1] = u

	_, _, err = svc.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestGenerateResetTokenAndCodeAreMutuallyExclusive(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)
	ctx := context.Background()

	token, err := svc.GenerateResetToken(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, users.rows[1].ResetToken)
	require.Nil(t, users.rows[1].ResetCode)

	code, err := svc.GenerateResetCode(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)
	require.Nil(t, users.rows[1].ResetToken, "issuing a code must clear the token")
	require.NotNil(t, users.rows[1].ResetCode)
	require.Equal(t, code, *users.rows[1].ResetCode)
}

func TestGenerateResetTokenUnknownEmail(t *testing.T) {
	users := newFakeUsers(testUser())
	svc := newTestTokenService(users)

	_, err := svc.GenerateResetToken(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
