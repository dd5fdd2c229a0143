package service

import (
	"testing"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressService(t *testing.T) {
	env := setupServices(t)
	user := env.createUser(t, "home@example.com")
	other := env.createUser(t, "away@example.com")
	svc := NewAddressService(env.db, repository.NewAddressRepository(env.db))

	home := &model.Address{Label: "home", Recipient: "A", Phone: "1", Line1: "1 Road", City: "X", Country: "gb"}
	require.NoError(t, svc.CreateAddress(user.ID, home))
	assert.True(t, home.IsDefault, "first address becomes the default")
	assert.Equal(t, "GB", home.Country)

	office := &model.Address{Label: "office", Recipient: "A", Phone: "1", Line1: "2 Road", City: "X", Country: "GB", IsDefault: true}
	require.NoError(t, svc.CreateAddress(user.ID, office))

	addresses, err := svc.GetUserAddresses(user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	defaults := 0
	for _, a := range addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, office.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	_, err = svc.GetAddress(other.ID, home.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, svc.DeleteAddress(other.ID, home.ID), ErrAddressNotFound)

	require.NoError(t, svc.DeleteAddress(user.ID, home.ID))
	addresses, err = svc.GetUserAddresses(user.ID)
	require.NoError(t, err)
	assert.Len(t, addresses, 1)
}
