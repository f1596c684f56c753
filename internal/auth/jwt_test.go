package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	token, err := manager.Generate(userID, RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, RoleUser, actor.Role)
	assert.False(t, actor.IsAdmin())
}

func TestJWTManager_AdminRole(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)

	token, err := manager.Generate(uuid.New(), RoleAdmin)
	require.NoError(t, err)

	actor, err := manager.Verify(token)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	other := NewJWTManager("other-secret", 15*time.Minute, 24*time.Hour)

	token, err := manager.Generate(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -1*time.Minute, 24*time.Hour)

	token, err := manager.Generate(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)

	_, err := manager.Verify("not.a.token")
	assert.Error(t, err)
}
