package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

func TestCreateAndFindUser(t *testing.T) {
	repo := NewRepository()

	user := &models.User{Email: " Ana@Example.com ", Name: "Ana", Provider: models.ProviderLocal, PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)

	found, err := repo.FindUserByEmail("ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	err = repo.CreateUser(&models.User{Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = repo.FindUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindOrCreateUser_Concurrent(t *testing.T) {
	repo := NewRepository()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := repo.FindOrCreateUser(&models.User{Email: "g@example.com", Provider: models.ProviderGoogle})
			if assert.NoError(t, err) {
				ids[i] = user.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestFindOrCreateUser_RefusesOtherProvider(t *testing.T) {
	repo := NewRepository()
	local := &models.User{Email: "ana@example.com", Provider: models.ProviderLocal, PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(local))

	user, err := repo.FindOrCreateUser(&models.User{Email: "Ana@example.com", Provider: models.ProviderGoogle})
	assert.ErrorIs(t, err, ErrProviderMismatch)
	assert.Nil(t, user)

	stored, err := repo.FindUserByEmail("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocal, stored.Provider)
	assert.Equal(t, local.ID, stored.ID)
}
