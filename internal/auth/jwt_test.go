package auth_test

import (
	"testing"

	"workspace/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseToken(t *testing.T) {
	userID := uuid.New().String()
	secret := "test-secret-key"

	token, err := auth.GenerateToken(userID, secret)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsed, err := auth.ParseToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken(uuid.New().String(), "secret-one")
	assert.NoError(t, err)

	_, err = auth.ParseToken(token, "secret-two")
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := auth.ParseToken("not-a-token", "secret")
	assert.Error(t, err)
}
