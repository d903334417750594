package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth() *AuthService {
	return NewAuthService("host", "secret-pass", "test-signing-key")
}

func TestLogin(t *testing.T) {
	svc := newTestAuth()

	resp, err := svc.Login("host", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.HostID)

	claims, err := svc.ValidateHostToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.HostID, claims.HostID)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestAuth()

	_, err := svc.Login("host", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("intruder", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPlayerTokenRoundTrip(t *testing.T) {
	svc := newTestAuth()

	token, err := svc.GeneratePlayerToken("r1", "p1")
	require.NoError(t, err)

	claims, err := svc.ValidatePlayerToken(token)
	require.NoError(t, err)
	assert.Equal(t, "r1", claims.RoomID)
	assert.Equal(t, "p1", claims.PlayerID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuth()

	_, err := svc.ValidateHostToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidatePlayerToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	svc := newTestAuth()
	other := NewAuthService("host", "secret-pass", "different-key")

	token, err := svc.GeneratePlayerToken("r1", "p1")
	require.NoError(t, err)

	_, err = other.ValidatePlayerToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
