package models

import "time"

type Brand struct {
	ID         int64
	OwnerID    int64
	Name       string
	Mobile     string
	AltMobile  *string
	Address    string
	City       string
	PostalCode *string
	LogoKey    *string
	LogoURL    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BrandPatch struct {
	Name       *string
	Mobile     *string
	AltMobile  *string
	Address    *string
	City       *string
	PostalCode *string
	LogoKey    *string
	LogoURL    *string
}

func (p BrandPatch) Empty() bool {
	return p.Name == nil && p.Mobile == nil && p.AltMobile == nil && p.Address == nil &&
		p.City == nil && p.PostalCode == nil && p.LogoKey == nil && p.LogoURL == nil
}
