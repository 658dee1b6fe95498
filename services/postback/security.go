package postback

import (
	"betaffiliate/models"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// placeholderKey is compared against when the house is unknown so the
// response time does not reveal whether the house exists.
const placeholderKey = "00000000-0000-0000-0000-000000000000"

// FindHouse looks a house up by numeric id or slug.
func FindHouse(db *gorm.DB, ident string) (*models.BettingHouse, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var house models.BettingHouse
	q := db
	if id, err := strconv.ParseUint(ident, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", strings.ToLower(ident))
	}
	if err := q.First(&house).Error; err != nil {
		return nil, err
	}
	return &house, nil
}

// ValidateToken authenticates a postback call against the house secret.
// Unknown house, inactive house and wrong token all return ErrUnauthorized.
func ValidateToken(db *gorm.DB, houseIdent, token string) (*models.BettingHouse, error) {
	token = strings.TrimSpace(token)

	house, err := FindHouse(db, houseIdent)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup house: %w", err)
	}

	expected := placeholderKey
	if house != nil {
		expected = house.APIKey
	}
	match := subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1

	if house == nil || token == "" || !match || !house.IsActive {
		return nil, ErrUnauthorized
	}
	return house, nil
}
