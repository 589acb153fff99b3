package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret")
	userID := uuid.New()

	token, err := tm.IssueAccess(userID, "admin", time.Hour)
	require.NoError(t, err)

	parsedID, role, err := tm.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, "admin", role)
}

func TestTokenManager_ParseAccess_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").IssueAccess(uuid.New(), "buyer", time.Hour)
	require.NoError(t, err)

	_, _, err = NewTokenManager("secret-b").ParseAccess(token)
	assert.Error(t, err)
}

func TestTokenManager_ParseAccess_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, err := tm.IssueAccess(uuid.New(), "seller", -time.Minute)
	require.NoError(t, err)

	_, _, err = tm.ParseAccess(token)
	assert.Error(t, err)
}

func TestTokenManager_ParseAccess_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret")
	_, _, err := tm.ParseAccess("не-токен")
	assert.Error(t, err)
}
