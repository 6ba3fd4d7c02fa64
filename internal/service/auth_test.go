package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/haatbazar-api/internal/geo"
	"github.com/flicky/haatbazar-api/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	sess, err := svc.Register(context.Background(), RegisterInput{
		Name: "Rahim", Mobile: "01711000000", Role: model.RoleCustomer,
		Location: &model.Location{Lat: 23.78, Lng: 90.40, Label: "Mirpur"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "01711000000", sess.User.Mobile)

	token, err := jwt.Parse(sess.Token, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, sess.User.ID.String(), claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newMockUserRepo()
	repo.add("Rahim", "01711000000", model.RoleCustomer)
	svc := NewAuthService(repo, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Other", Mobile: "01711000000", Role: model.RoleCustomer, UseDefaultLocation: true,
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_Location(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Mobile: "1", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, ErrLocationRequired)

	sess, err := svc.Register(context.Background(), RegisterInput{
		Name: "B", Mobile: "2", Role: model.RoleShopkeeper, UseDefaultLocation: true,
	})
	require.NoError(t, err)
	require.NotNil(t, sess.User.Location)
	assert.Equal(t, geo.Fallback.Lat, sess.User.Location.Lat)
	assert.Equal(t, geo.Fallback.Lng, sess.User.Location.Lng)
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), "test-secret", time.Hour)
	_, err := svc.Register(context.Background(), RegisterInput{Mobile: "1", Role: "ADMIN", UseDefaultLocation: true})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	u := repo.add("Karim", "01811000000", model.RoleShopkeeper)
	svc := NewAuthService(repo, "test-secret", time.Hour)

	sess, err := svc.Login(context.Background(), "01811000000")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.User.ID)

	_, err = svc.Login(context.Background(), "01900000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newMockUserRepo()
	u := repo.add("Karim", "01811000000", model.RoleCustomer)
	svc := NewAuthService(repo, "test-secret", time.Hour)

	name := "Karim Uddin"
	addr := "House 4, Road 2"
	got, err := svc.UpdateProfile(context.Background(), u.ID, ProfileInput{Name: &name, SavedAddress: &addr})
	require.NoError(t, err)
	assert.Equal(t, "Karim Uddin", got.Name)
	assert.Equal(t, "House 4, Road 2", got.SavedAddress)
	assert.Equal(t, "01811000000", got.Mobile)
}
