package postback

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrAffiliateNotFound = errors.New("affiliate not found")
	ErrHouseInactive     = errors.New("house inactive")
)
