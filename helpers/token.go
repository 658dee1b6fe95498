package helpers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin     = "admin"
	RoleAffiliate = "affiliate"

	tokenIssuer = "betaffiliate"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role        string `json:"role"`
	AffiliateID uint   `json:"affiliate_id,omitempty"`
	jwt.RegisteredClaims
}

func IssueToken(secret, role string, affiliateID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:        role,
		AffiliateID: affiliateID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(affiliateID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin && claims.Role != RoleAffiliate {
		return nil, ErrInvalidToken
	}
	if claims.Role == RoleAffiliate && claims.AffiliateID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
