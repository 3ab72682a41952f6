package helpscout

import "time"

// Token is a bearer token together with the absolute instant it stops being
// accepted. The zero value is already expired.
type Token struct {
	AccessToken string    `json:"access_token" yaml:"access_token"`
	TokenType   string    `json:"token_type"   yaml:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"   yaml:"expires_at"`
}

// ValidAt reports whether the token can still be used at now. Expiry is
// strict: a token whose deadline equals now is expired.
func (t *Token) ValidAt(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	return t.ExpiresAt.After(now)
}

// Valid reports whether the token is usable right now.
func (t *Token) Valid() bool {
	return t.ValidAt(time.Now())
}

// TokenCache holds the single current token of one application identity.
type TokenCache interface {
	Get() *Token
	Set(token *Token)
	Clear()
}
