package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour, "mqk-test")
	userID := uuid.New()

	token, expiresAt, err := m.Generate(Claims{
		UserID:       userID,
		Username:     "jatim1",
		Roles:        []string{"user"},
		Permissions:  []string{"registration:view"},
		RegionIDs:    []string{"r-1"},
		TokenVersion: "v1",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{"registration:view"}, claims.Permissions)
	assert.Equal(t, []string{"r-1"}, claims.RegionIDs)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestManager_RejectsForeignSecretAndExpired(t *testing.T) {
	m := NewManager("secret", time.Hour, "mqk-test")
	token, _, err := m.Generate(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour, "mqk-test").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("secret", time.Hour, "mqk-test")
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
