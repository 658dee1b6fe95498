package admin

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/models"
	"betaffiliate/services/commission"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	validate    = newValidator()
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})
	return v
}

type HouseRequest struct {
	Name                     string                `json:"name" validate:"required,max=128"`
	Slug                     string                `json:"slug" validate:"required,max=64,slug"`
	CommissionType           models.CommissionType `json:"commission_type" validate:"required,oneof=CPA RevShare Hybrid"`
	CPAValue                 decimal.Decimal       `json:"cpa_value"`
	RevShareValue            decimal.Decimal       `json:"revshare_value"`
	CPAAffiliatePercent      decimal.Decimal       `json:"cpa_affiliate_percent"`
	RevShareAffiliatePercent decimal.Decimal       `json:"revshare_affiliate_percent"`
	CPATrigger               models.EventType      `json:"cpa_trigger" validate:"omitempty,oneof=registration deposit"`
	Currency                 string                `json:"currency" validate:"omitempty,len=3,alpha"`
	IsActive                 *bool                 `json:"is_active"`
}

func (r *HouseRequest) apply(h *models.BettingHouse) {
	h.Name = strings.TrimSpace(r.Name)
	h.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	h.CommissionType = r.CommissionType
	h.CPAValue = r.CPAValue
	h.RevShareValue = r.RevShareValue
	h.CPAAffiliatePercent = r.CPAAffiliatePercent
	h.RevShareAffiliatePercent = r.RevShareAffiliatePercent
	h.CPATrigger = r.CPATrigger
	if h.CPATrigger == "" {
		h.CPATrigger = models.EventRegistration
	}
	if r.Currency != "" {
		h.Currency = strings.ToUpper(r.Currency)
	}
	if r.IsActive != nil {
		h.IsActive = *r.IsActive
	}
}

func parseHouseRequest(c *fiber.Ctx) (*HouseRequest, error) {
	var req HouseRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.New("INVALID_JSON")
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func CreateHouse(c *fiber.Ctx) error {
	req, err := parseHouseRequest(c)
	if err != nil {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	house := models.BettingHouse{
		APIKey:   helpers.GenerateAPIKey(),
		Currency: "BRL",
		IsActive: true,
	}
	req.apply(&house)

	if _, err := commission.FromHouse(&house); err != nil {
		return helpers.JSONFailure(c, fiber.StatusUnprocessableEntity, "INVALID_COMMISSION_CONFIG", err.Error())
	}

	var existing models.BettingHouse
	if err := database.DB.Where("slug = ?", house.Slug).First(&existing).Error; err == nil {
		return helpers.JSONFailure(c, fiber.StatusConflict, "HOUSE_ALREADY_EXISTS", "slug already in use")
	}

	if err := database.DB.Create(&house).Error; err != nil {
		log.Error().Err(err).Str("slug", house.Slug).Msg("failed to create house")
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_CREATE_HOUSE", "could not create house")
	}

	return helpers.JSONCreated(c, "House created successfully", houseView(&house, true))
}

func UpdateHouse(c *fiber.Ctx) error {
	house, err := loadHouse(c)
	if house == nil {
		return err
	}

	req, err := parseHouseRequest(c)
	if err != nil {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}
	req.apply(house)

	if _, err := commission.FromHouse(house); err != nil {
		return helpers.JSONFailure(c, fiber.StatusUnprocessableEntity, "INVALID_COMMISSION_CONFIG", err.Error())
	}

	var clash models.BettingHouse
	if err := database.DB.Where("slug = ? AND id <> ?", house.Slug, house.ID).First(&clash).Error; err == nil {
		return helpers.JSONFailure(c, fiber.StatusConflict, "HOUSE_ALREADY_EXISTS", "slug already in use")
	}

	// Select("*") so is_active=false and zeroed percentages are written too.
	if err := database.DB.Model(house).Select("*").Updates(house).Error; err != nil {
		log.Error().Err(err).Uint("house_id", house.ID).Msg("failed to update house")
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_UPDATE_HOUSE", "could not update house")
	}

	return helpers.JSONSuccess(c, "House updated successfully", houseView(house, false))
}

func RotateHouseKey(c *fiber.Ctx) error {
	house, err := loadHouse(c)
	if house == nil {
		return err
	}

	house.APIKey = helpers.GenerateAPIKey()
	if err := database.DB.Model(house).Update("api_key", house.APIKey).Error; err != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_ROTATE_KEY", "could not rotate key")
	}

	log.Info().Uint("house_id", house.ID).Msg("house api key rotated")
	return helpers.JSONSuccess(c, "House key rotated successfully", houseView(house, true))
}

func ListHouses(c *fiber.Ctx) error {
	var houses []models.BettingHouse
	if err := database.DB.Order("name").Find(&houses).Error; err != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_LIST_HOUSES", "could not list houses")
	}

	views := make([]fiber.Map, 0, len(houses))
	for i := range houses {
		views = append(views, houseView(&houses[i], false))
	}
	return helpers.JSONSuccess(c, "Houses retrieved successfully", views)
}

// loadHouse returns nil when it already wrote an error response.
func loadHouse(c *fiber.Ctx) (*models.BettingHouse, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, helpers.JSONFailure(c, fiber.StatusBadRequest, "INVALID_ID", "invalid house id")
	}

	var house models.BettingHouse
	if err := database.DB.First(&house, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helpers.JSONFailure(c, fiber.StatusNotFound, "HOUSE_NOT_FOUND", "house not found")
		}
		return nil, helpers.JSONFailure(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "could not load house")
	}
	return &house, nil
}

func houseView(h *models.BettingHouse, withKey bool) fiber.Map {
	view := fiber.Map{
		"id":                         h.ID,
		"name":                       h.Name,
		"slug":                       h.Slug,
		"commission_type":            h.CommissionType,
		"cpa_value":                  h.CPAValue.StringFixed(2),
		"revshare_value":             h.RevShareValue.String(),
		"cpa_affiliate_percent":      h.CPAAffiliatePercent.String(),
		"revshare_affiliate_percent": h.RevShareAffiliatePercent.String(),
		"cpa_trigger":                h.CPATrigger,
		"currency":                   h.Currency,
		"is_active":                  h.IsActive,
	}
	if withKey {
		view["api_key"] = h.APIKey
	}
	return view
}
