package jwt

import (
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func Decode(token string, secret string) (*Payload, error) {
	claims := gojwt.MapClaims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("can't parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	payload := &Payload{UserID: sub}
	if name, ok := claims["name"].(string); ok {
		payload.UserName = name
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		payload.IssuedAt = iat.Unix()
	}
	return payload, nil
}
