package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	tok, err := IssueToken("s3cret", RoleAffiliate, 42, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, RoleAffiliate, claims.Role)
	assert.EqualValues(t, 42, claims.AffiliateID)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := IssueToken("s3cret", RoleAdmin, 0, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken("s3cret", RoleAdmin, 0, -time.Minute)
	require.NoError(t, err)
	noAffiliate, err := IssueToken("s3cret", RoleAffiliate, 0, time.Hour)
	require.NoError(t, err)
	badRole, err := IssueToken("s3cret", "superuser", 0, time.Hour)
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := map[string]struct {
		secret, token string
	}{
		"wrong secret":         {"other", valid},
		"expired":              {"s3cret", expired},
		"affiliate without id": {"s3cret", noAffiliate},
		"unknown role":         {"s3cret", badRole},
		"foreign issuer":       {"s3cret", foreign},
		"garbage":              {"s3cret", "not.a.token"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
