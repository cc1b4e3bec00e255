package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret("secret") })

	token, err := GenerateToken("64b000000000000000000001", "rpi", []string{"facilities", "safety"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64b000000000000000000001", claims.UserID)
	assert.Equal(t, "rpi", claims.Tenant)
	assert.Equal(t, []string{"facilities", "safety"}, claims.Roles)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	SetSecret("one")
	token, err := GenerateToken("u1", "rpi", nil)
	require.NoError(t, err)

	SetSecret("two")
	t.Cleanup(func() { SetSecret("secret") })

	_, err = ValidateToken(token)
	assert.Error(t, err)
}
