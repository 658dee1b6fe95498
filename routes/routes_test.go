package routes

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/internal/testdb"
	"betaffiliate/models"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type env struct {
	t     *testing.T
	app   *fiber.App
	house *models.BettingHouse
	aff   *models.Affiliate
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)
	database.DB = db

	app := fiber.New()
	Setup(app, Options{
		JWTSecret:       testSecret,
		TrackingBaseURL: "https://track.example.com",
	})

	return &env{
		t:     t,
		app:   app,
		house: testdb.HybridHouse(t, db, "acme", "acme-key"),
		aff:   testdb.Affiliate(t, db, "aff1"),
	}
}

func (e *env) do(req *http.Request) (int, map[string]any) {
	e.t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	var body map[string]any
	require.NoError(e.t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func (e *env) token(role string, affiliateID uint) string {
	e.t.Helper()
	tok, err := helpers.IssueToken(testSecret, role, affiliateID, time.Hour)
	require.NoError(e.t, err)
	return "Bearer " + tok
}

func jsonRequest(method, target string, payload any) *http.Request {
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func conversionCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.DB.Model(&models.Conversion{}).Count(&n).Error)
	return n
}

func TestWebhook_RejectsBadCredentials(t *testing.T) {
	e := setup(t)

	cases := map[string]*http.Request{
		"no key":      httptest.NewRequest(http.MethodGet, "/webhook/conversions?house_id=acme&event_type=registration&subid=aff1&customer_id=c1", nil),
		"wrong key":   httptest.NewRequest(http.MethodGet, "/postback/acme/registration?subid=aff1&customer_id=c1&token=nope", nil),
		"wrong house": httptest.NewRequest(http.MethodGet, "/postback/other/registration?subid=aff1&customer_id=c1&token=acme-key", nil),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := e.do(req)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "UNAUTHORIZED", body["error"])
		})
	}
	assert.EqualValues(t, 0, conversionCount(t))
}

func TestWebhook_PathPostback(t *testing.T) {
	e := setup(t)

	status, body := e.do(httptest.NewRequest(http.MethodGet,
		"/postback/acme/signup?subid=aff1&customer_id=c1&token=acme-key", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["duplicate"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "registration", data["type"])
	assert.Equal(t, "150.00", data["commission"])
	assert.Nil(t, data["amount"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "aff1", data["affiliate"].(map[string]any)["username"])
	assert.Equal(t, e.house.Name, data["house"].(map[string]any)["name"])
}

func TestWebhook_ReplayReturnsSameConversion(t *testing.T) {
	e := setup(t)

	var ids []any
	for i := 0; i < 3; i++ {
		req := jsonRequest(http.MethodPost, "/webhook/conversions", map[string]any{
			"event_type":  "deposit",
			"subid":       "aff1",
			"customer_id": "c1",
			"amount":      1000,
		})
		req.Header.Set("X-House-ID", fmt.Sprint(e.house.ID))
		req.Header.Set("X-API-Key", "acme-key")

		status, body := e.do(req)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, i > 0, body["duplicate"])

		data := body["data"].(map[string]any)
		assert.Equal(t, "150.00", data["commission"])
		assert.Equal(t, "1000.00", data["amount"])
		ids = append(ids, data["conversion_id"])
	}

	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])
	assert.EqualValues(t, 1, conversionCount(t))
}

func TestWebhook_Malformed(t *testing.T) {
	e := setup(t)

	status, body := e.do(httptest.NewRequest(http.MethodGet,
		"/webhook/conversions?house_id=acme&token=acme-key&event_type=deposit&customer_id=c1", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MALFORMED_EVENT", body["error"])

	status, body = e.do(httptest.NewRequest(http.MethodGet,
		"/postback/acme/chargeback?subid=aff1&customer_id=c1&token=acme-key", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MALFORMED_EVENT", body["error"])

	assert.EqualValues(t, 0, conversionCount(t))
}

func TestWebhook_UnknownAffiliate(t *testing.T) {
	e := setup(t)

	status, body := e.do(httptest.NewRequest(http.MethodGet,
		"/postback/acme/deposit?subid=ghost_user&customer_id=c1&amount=10&token=acme-key", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "AFFILIATE_NOT_FOUND", body["error"])
	assert.EqualValues(t, 0, conversionCount(t))
}

func TestWebhook_NoApplicableRuleWarning(t *testing.T) {
	e := setup(t)

	status, body := e.do(httptest.NewRequest(http.MethodGet,
		"/postback/acme/withdrawal?subid=aff1&customer_id=c1&amount=20&token=acme-key", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "NO_APPLICABLE_COMMISSION_RULE", body["warning"])
	assert.Nil(t, body["data"].(map[string]any)["commission"])
	assert.EqualValues(t, 1, conversionCount(t))
}

func TestWebhook_Ping(t *testing.T) {
	e := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook/ping", nil)
	req.Header.Set("X-House-ID", "acme")
	req.Header.Set("X-API-Key", "acme-key")

	status, body := e.do(req)
	require.Equal(t, http.StatusOK, status)
	house := body["data"].(map[string]any)["house"].(map[string]any)
	assert.Equal(t, "acme", house["slug"])
	assert.Equal(t, "Hybrid", house["commission_type"])
}

func TestAdmin_RequiresAdminToken(t *testing.T) {
	e := setup(t)

	status, _ := e.do(httptest.NewRequest(http.MethodGet, "/api/admin/houses", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/houses", nil)
	req.Header.Set("Authorization", e.token(helpers.RoleAffiliate, e.aff.ID))
	status, _ = e.do(req)
	assert.Equal(t, http.StatusForbidden, status)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/houses", nil)
	req.Header.Set("Authorization", e.token(helpers.RoleAdmin, 0))
	status, body := e.do(req)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestAdmin_HouseLifecycle(t *testing.T) {
	e := setup(t)
	admin := e.token(helpers.RoleAdmin, 0)

	req := jsonRequest(http.MethodPost, "/api/admin/houses", map[string]any{
		"name":                  "Bravo Bet",
		"slug":                  "bravo",
		"commission_type":       "CPA",
		"cpa_value":             "80",
		"cpa_affiliate_percent": "50",
	})
	req.Header.Set("Authorization", admin)
	status, body := e.do(req)
	require.Equal(t, http.StatusCreated, status, body)

	created := body["data"].(map[string]any)
	apiKey := created["api_key"].(string)
	require.NotEmpty(t, apiKey)
	assert.Equal(t, "80.00", created["cpa_value"])
	assert.Equal(t, "registration", created["cpa_trigger"])

	// the new key authenticates postbacks
	status, body = e.do(httptest.NewRequest(http.MethodGet,
		"/postback/bravo/registration?subid=aff1&customer_id=p1&token="+apiKey, nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "40.00", body["data"].(map[string]any)["commission"])

	req = jsonRequest(http.MethodPost, "/api/admin/houses", map[string]any{
		"name": "Dup", "slug": "bravo", "commission_type": "CPA", "cpa_value": "10",
	})
	req.Header.Set("Authorization", admin)
	status, _ = e.do(req)
	assert.Equal(t, http.StatusConflict, status)

	req = jsonRequest(http.MethodPost, "/api/admin/houses", map[string]any{
		"name": "Broken", "slug": "broken", "commission_type": "RevShare", "revshare_value": "0",
	})
	req.Header.Set("Authorization", admin)
	status, body = e.do(req)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_COMMISSION_CONFIG", body["error"])

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/admin/houses/%v/rotate-key", created["id"]), nil)
	req.Header.Set("Authorization", admin)
	status, body = e.do(req)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, apiKey, body["data"].(map[string]any)["api_key"])

	status, _ = e.do(httptest.NewRequest(http.MethodGet,
		"/postback/bravo/registration?subid=aff1&customer_id=p2&token="+apiKey, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdmin_Links(t *testing.T) {
	e := setup(t)
	admin := e.token(helpers.RoleAdmin, 0)
	payload := map[string]any{"affiliate_id": e.aff.ID, "house_id": e.house.ID}

	req := jsonRequest(http.MethodPost, "/api/admin/links", payload)
	req.Header.Set("Authorization", admin)
	status, body := e.do(req)
	require.Equal(t, http.StatusCreated, status)
	first := body["data"].(map[string]any)
	assert.Contains(t, first["generated_url"], "https://track.example.com/r/")
	assert.Contains(t, first["generated_url"], "subid=aff1")

	req = jsonRequest(http.MethodPost, "/api/admin/links", payload)
	req.Header.Set("Authorization", admin)
	status, body = e.do(req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first["code"], body["data"].(map[string]any)["code"])

	req = httptest.NewRequest(http.MethodGet, "/api/user/links", nil)
	req.Header.Set("Authorization", e.token(helpers.RoleAffiliate, e.aff.ID))
	status, body = e.do(req)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestReportsAndUserStats(t *testing.T) {
	e := setup(t)

	for _, q := range []string{
		"/postback/acme/click?subid=aff1&customer_id=c1&token=acme-key",
		"/postback/acme/click?subid=aff1&customer_id=c2&token=acme-key",
		"/postback/acme/registration?subid=aff1&customer_id=c1&token=acme-key",
		"/postback/acme/deposit?subid=aff1&customer_id=c1&amount=1000&token=acme-key",
	} {
		status, _ := e.do(httptest.NewRequest(http.MethodGet, q, nil))
		require.Equal(t, http.StatusOK, status)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/by-affiliate", nil)
	req.Header.Set("Authorization", e.token(helpers.RoleAdmin, 0))
	status, body := e.do(req)
	require.Equal(t, http.StatusOK, status)
	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "aff1", row["name"])
	assert.EqualValues(t, 2, row["clicks"])
	assert.True(t, decimal.RequireFromString(row["registration_rate"].(string)).Equal(decimal.NewFromInt(50)))
	assert.True(t, decimal.RequireFromString(row["total_commission"].(string)).Equal(decimal.NewFromInt(300)))

	req = httptest.NewRequest(http.MethodGet, "/api/admin/reports/by-house?from=bad", nil)
	req.Header.Set("Authorization", e.token(helpers.RoleAdmin, 0))
	status, _ = e.do(req)
	assert.Equal(t, http.StatusBadRequest, status)

	affToken := e.token(helpers.RoleAffiliate, e.aff.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/user/stats", nil)
	req.Header.Set("Authorization", affToken)
	status, body = e.do(req)
	require.Equal(t, http.StatusOK, status)
	totals := body["data"].(map[string]any)["totals"].(map[string]any)
	assert.EqualValues(t, 4, totals["conversions"])

	req = httptest.NewRequest(http.MethodGet, "/api/user/conversions?type=click&limit=1", nil)
	req.Header.Set("Authorization", affToken)
	status, body = e.do(req)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["total"])
	assert.Len(t, data["items"], 1)
}

func TestAdmin_CreateInactiveHouse(t *testing.T) {
	e := setup(t)

	req := jsonRequest(http.MethodPost, "/api/admin/houses", map[string]any{
		"name":                  "Off Bet",
		"slug":                  "off",
		"commission_type":       "CPA",
		"cpa_value":             "80",
		"cpa_affiliate_percent": "50",
		"is_active":             false,
	})
	req.Header.Set("Authorization", e.token(helpers.RoleAdmin, 0))
	status, body := e.do(req)
	require.Equal(t, http.StatusCreated, status, body)

	created := body["data"].(map[string]any)
	assert.Equal(t, false, created["is_active"])

	var stored models.BettingHouse
	require.NoError(t, database.DB.Where("slug = ?", "off").First(&stored).Error)
	assert.False(t, stored.IsActive)

	status, _ = e.do(httptest.NewRequest(http.MethodGet,
		"/postback/off/registration?subid=aff1&customer_id=c1&token="+created["api_key"].(string), nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.EqualValues(t, 0, conversionCount(t))
}

func TestWebhook_HouseFromBody(t *testing.T) {
	e := setup(t)

	req := jsonRequest(http.MethodPost, "/webhook/conversions", map[string]any{
		"house_id":    e.house.ID,
		"event_type":  "registration",
		"subid":       "aff1",
		"customer_id": "c1",
	})
	req.Header.Set("X-API-Key", "acme-key")
	status, body := e.do(req)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "150.00", body["data"].(map[string]any)["commission"])

	form := httptest.NewRequest(http.MethodPost, "/webhook/conversions?token=acme-key",
		bytes.NewReader([]byte("house_id=acme&event_type=deposit&subid=aff1&customer_id=c1&amount=99,90")))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, body = e.do(form)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "99.90", body["data"].(map[string]any)["amount"])
}

func TestWebhook_RejectsAmbiguousAmounts(t *testing.T) {
	e := setup(t)

	for _, amount := range []string{"1,000", "1e5000000"} {
		status, body := e.do(httptest.NewRequest(http.MethodGet,
			"/postback/acme/deposit?subid=aff1&customer_id=c1&token=acme-key&amount="+amount, nil))
		assert.Equal(t, http.StatusBadRequest, status, amount)
		assert.Equal(t, "MALFORMED_EVENT", body["error"])
	}
	assert.EqualValues(t, 0, conversionCount(t))
}
