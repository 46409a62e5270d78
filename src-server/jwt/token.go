package jwt

type Payload struct {
	UserID   string `json:"sub"`
	UserName string `json:"name"`
	IssuedAt int64  `json:"iat"`
}
