package handlers

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/service"
)

type brandRequest struct {
	Name       *string `json:"name"`
	Mobile     *string `json:"mobile"`
	AltMobile  *string `json:"alt_mobile"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
}

func (h HandlerSet) CreateBrand(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req brandRequest
	if !bindJSON(c, &req) {
		return
	}

	brand, err := h.brands.Create(c.Request.Context(), userID, service.BrandInput{
		Name:       req.Name,
		Mobile:     req.Mobile,
		AltMobile:  req.AltMobile,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Brand created successfully", gin.H{"data": newBrandResponse(brand)})
}

func (h HandlerSet) GetBrand(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	brand, err := h.brands.Get(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Data fetched successfully", gin.H{"data": newBrandResponse(brand)})
}

func (h HandlerSet) EditBrand(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	fields, logo, err := editForm(c, "name", "mobile", "alt_mobile", "address", "city", "postal_code")
	if err != nil {
		_ = c.Error(err)
		return
	}

	brand, changed, err := h.brands.Edit(c.Request.Context(), userID, service.BrandInput{
		Name:       fields["name"],
		Mobile:     fields["mobile"],
		AltMobile:  fields["alt_mobile"],
		Address:    fields["address"],
		City:       fields["city"],
		PostalCode: fields["postal_code"],
		Logo:       logo,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !changed {
		respond(c, "No changes detected. Brand data is already up to date", gin.H{"data": newBrandResponse(brand)})
		return
	}

	respond(c, "Brand updated successfully", gin.H{"data": newBrandResponse(brand)})
}
