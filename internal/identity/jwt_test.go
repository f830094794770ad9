package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123"

func TestCreateAndValidateToken(t *testing.T) {
	id := Identity{
		UserID:      uuid.New(),
		DisplayName: "Alice",
		Email:       "alice@example.com",
	}

	token, err := CreateToken(id, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := CreateToken(Identity{UserID: uuid.New()}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "a-different-secret-also-long-enough")
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := CreateToken(Identity{UserID: uuid.New()}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	require.Error(t, err)
}

func TestFromContext_DefaultsToAnonymous(t *testing.T) {
	id := FromContext(context.Background())
	require.True(t, id.IsAnonymous())
}
