package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/qr-restaurant/database"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
)

func seedAdmin(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, database.SeedAdmin(f.db, "admin@qr-restaurant.com", "admin123"))
}

func TestLoginDoesNotRevealWhichPartWasWrong(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)
	ctx := context.Background()

	_, unknownErr := f.auth.Login(ctx, "nobody@qr-restaurant.com", "admin123")
	_, wrongErr := f.auth.Login(ctx, "admin@qr-restaurant.com", "wrong")

	assert.ErrorIs(t, unknownErr, utils.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, utils.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginIssuesBearerToken(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, " ADMIN@qr-restaurant.com ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	claims, err := f.tokens.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Nil(t, claims.RestaurantID)

	sess, err := f.auth.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())
	assert.Empty(t, sess.RestaurantID)
	assert.Equal(t, claims.ID, sess.TokenID)

	me, err := f.auth.Me(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "admin@qr-restaurant.com", me.Email)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	seedAdmin(t, f)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, "admin@qr-restaurant.com", "admin123")
	require.NoError(t, err)
	sess, err := f.auth.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, sess))

	_, err = f.auth.ResolveSession(ctx, res.AccessToken)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	// A fresh login still works.
	again, err := f.auth.Login(ctx, "admin@qr-restaurant.com", "admin123")
	require.NoError(t, err)
	_, err = f.auth.ResolveSession(ctx, again.AccessToken)
	assert.NoError(t, err)
}

func TestLogoutWithRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := newFixture(t)
	f.auth.Revoker = utils.NewRedisRevoker(client)
	seedAdmin(t, f)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, "admin@qr-restaurant.com", "admin123")
	require.NoError(t, err)
	sess, err := f.auth.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, sess))

	_, err = f.auth.ResolveSession(ctx, res.AccessToken)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
	assert.True(t, mr.Exists("revoked-token:"+sess.TokenID))
}

func TestResolveSessionRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tn := f.newTenant(t, "Baydöner")

	_, err := f.auth.ResolveSession(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	forged, _, err := utils.NewTokenIssuer("other-secret", time.Hour).GenerateToken(tn.owner.UserID, "owner", &tn.restaurant.ID)
	require.NoError(t, err)
	_, err = f.auth.ResolveSession(ctx, forged)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	expired, _, err := utils.NewTokenIssuer("test-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		GenerateToken(tn.owner.UserID, "owner", &tn.restaurant.ID)
	require.NoError(t, err)
	_, err = f.auth.ResolveSession(ctx, expired)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	// The role in the token is not trusted; the stored user decides.
	escalated, _, err := f.tokens.GenerateToken(tn.kitchen.UserID, "admin", nil)
	require.NoError(t, err)
	sess, err := f.auth.ResolveSession(ctx, escalated)
	require.NoError(t, err)
	assert.Equal(t, models.RoleKitchen, sess.Role)
	assert.Equal(t, tn.restaurant.ID, sess.RestaurantID)

	valid, _, err := f.tokens.GenerateToken(tn.owner.UserID, "owner", &tn.restaurant.ID)
	require.NoError(t, err)
	require.NoError(t, f.tenants.DeleteRestaurant(ctx, adminSession, tn.restaurant.ID))
	_, err = f.auth.ResolveSession(ctx, valid)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestRegisterStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tn := f.newTenant(t, "Baydöner")

	user, err := f.auth.Register(ctx, adminSession, RegisterInput{
		FullName:     "Yeni Garson",
		Email:        "garson@baydoner.com",
		Password:     "garson123",
		Role:         models.RoleCashier,
		RestaurantID: tn.restaurant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, user.Role)
	assert.NotEqual(t, "garson123", user.Password)

	_, err = f.auth.Register(ctx, adminSession, RegisterInput{Email: "GARSON@baydoner.com", Password: "garson123", Role: models.RoleKitchen, RestaurantID: tn.restaurant.ID})
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = f.auth.Register(ctx, adminSession, RegisterInput{Email: "root@x.com", Password: "secret1", Role: models.RoleAdmin, RestaurantID: tn.restaurant.ID})
	assert.ErrorIs(t, err, utils.ErrUnprocessable)

	_, err = f.auth.Register(ctx, adminSession, RegisterInput{Email: "ghost@x.com", Password: "secret1", Role: models.RoleOwner, RestaurantID: "missing"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.auth.Register(ctx, tn.owner, RegisterInput{Email: "mine@x.com", Password: "secret1", Role: models.RoleKitchen, RestaurantID: tn.restaurant.ID})
	assert.ErrorIs(t, err, utils.ErrForbidden)
}
