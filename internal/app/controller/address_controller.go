package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type AddressRequest struct {
	Label      string `json:"label" binding:"max=100"`
	Recipient  string `json:"recipient" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,max=30"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	IsDefault  bool   `json:"is_default"`
}

func (r AddressRequest) toModel() *model.Address {
	return &model.Address{
		Label:      r.Label,
		Recipient:  r.Recipient,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    strings.ToUpper(r.Country),
		IsDefault:  r.IsDefault,
	}
}

// ListAddresses returns user's addresses
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addresses, err := ctrl.addressService.GetUserAddresses(userID)
	if err != nil {
		respondError(c, err, "list addresses", map[string]interface{}{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// CreateAddress POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address := req.toModel()
	if err := ctrl.addressService.CreateAddress(userID, address); err != nil {
		respondError(c, err, "create address", map[string]interface{}{"user_id": userID})
		return
	}

	log.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"address": address})
}

// UpdateAddress PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address, err := ctrl.addressService.UpdateAddress(userID, addressID, req.toModel())
	if err != nil {
		respondError(c, err, "update address", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}

// DeleteAddress DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(userID, addressID); err != nil {
		respondError(c, err, "delete address", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
