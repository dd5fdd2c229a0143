package service

import (
	"errors"
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

// Another user's address reads as missing rather than forbidden.
var ErrAddressNotFound = apperrors.NotFoundError(apperrors.AddressNotFound, "address not found")

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	GetAddress(userID, addressID uint) (*model.Address, error)
	CreateAddress(userID uint, address *model.Address) error
	UpdateAddress(userID, addressID uint, updated *model.Address) (*model.Address, error)
	DeleteAddress(userID, addressID uint) error
}

type addressService struct {
	db          *gorm.DB
	addressRepo repository.AddressRepository
}

func NewAddressService(db *gorm.DB, addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		db:          db,
		addressRepo: addressRepo,
	}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	logger.Debug("Fetching user addresses", map[string]interface{}{
		"user_id": userID,
	})

	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

func (s *addressService) GetAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByIDAndUser(addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

// CreateAddress makes the first address of a user the default one.
func (s *addressService) CreateAddress(userID uint, address *model.Address) error {
	logger.Info("Creating address", map[string]interface{}{
		"user_id":   userID,
		"label":     address.Label,
		"recipient": address.Recipient,
	})

	address.ID = 0
	address.UserID = userID
	address.Country = strings.ToUpper(address.Country)

	return s.db.Transaction(func(tx *gorm.DB) error {
		addresses := s.addressRepo.WithTx(tx)

		existing, err := addresses.FindByUserID(userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			address.IsDefault = true
		}
		if address.IsDefault {
			if err := addresses.ClearDefault(userID); err != nil {
				return err
			}
		}
		return addresses.Create(address)
	})
}

func (s *addressService) UpdateAddress(userID, addressID uint, updated *model.Address) (*model.Address, error) {
	logger.Info("Updating address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		addresses := s.addressRepo.WithTx(tx)

		address, err := addresses.FindByIDAndUser(addressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}

		address.Label = updated.Label
		address.Recipient = updated.Recipient
		address.Phone = updated.Phone
		address.Line1 = updated.Line1
		address.Line2 = updated.Line2
		address.City = updated.City
		address.PostalCode = updated.PostalCode
		address.Country = strings.ToUpper(updated.Country)

		if updated.IsDefault && !address.IsDefault {
			if err := addresses.ClearDefault(userID); err != nil {
				return err
			}
			address.IsDefault = true
		}
		return addresses.Update(address)
	})
	if err != nil {
		return nil, err
	}
	return s.GetAddress(userID, addressID)
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	if err := s.addressRepo.Delete(addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return err
	}

	logger.Info("Address deleted", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}
