package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func Encode(payload Payload, secret string) (string, error) {
	if payload.UserID == "" {
		return "", fmt.Errorf("can't encode token: user id is blank")
	}
	if payload.IssuedAt == 0 {
		payload.IssuedAt = time.Now().UTC().Unix()
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.MapClaims{
		"sub":  payload.UserID,
		"name": payload.UserName,
		"iat":  payload.IssuedAt,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}
	return signed, nil
}
