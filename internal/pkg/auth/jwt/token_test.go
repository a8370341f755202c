package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{
		ID:          "agent-123",
		Role:        RoleAgent,
		DisplayName: "Alice",
	}

	tokenString, err := GenerateToken(payload, testSecret, AgentSessionExpiration)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := ParseToken(tokenString, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "agent-123", parsed.ID)
	assert.Equal(t, RoleAgent, parsed.Role)
	assert.Equal(t, "Alice", parsed.DisplayName)
	assert.Equal(t, TokenIssuer, parsed.Issuer)
	assert.Greater(t, parsed.ExpiresAt, time.Now().Unix())
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	payload := &Payload{ID: "agent-123", Role: RoleAgent}

	tokenString, err := GenerateToken(payload, testSecret, AgentSessionExpiration)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "a-different-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	payload := &Payload{ID: "visitor-1", Role: RoleVisitor}

	tokenString, err := GenerateToken(payload, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
