package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoProvider     = errors.New("auth: no identity provider configured")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrMissingSubject = errors.New("auth: token has no subject")
)

// Identity is what the identity provider vouches for after login.
type Identity struct {
	Subject   string
	Email     string
	RoleClaim string
}

// Verifier validates access tokens issued by the identity provider.
// HS256 tokens are checked against the shared secret, RS256 tokens against
// the provider's JWKS.
type Verifier struct {
	secret []byte
	keys   *KeySet
	leeway time.Duration
}

func NewVerifier(secret string, keys *KeySet) *Verifier {
	v := &Verifier{keys: keys, leeway: 30 * time.Second}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

func (v *Verifier) Configured() bool {
	return v != nil && (len(v.secret) > 0 || v.keys != nil)
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, fmt.Errorf("HS256 token received but no shared secret is configured")
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.keys == nil {
			return nil, fmt.Errorf("RS256 token received but no JWKS endpoint is configured")
		}
		return v.keys.KeyFunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

// Verify parses tokenString and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if !v.Configured() {
		return nil, ErrNoProvider
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, ErrMissingSubject
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &Identity{Subject: sub, Email: email, RoleClaim: role}, nil
}

// IssueHS256 signs a short-lived token with the shared secret. Used by the
// dev token script and tests.
func IssueHS256(secret, subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
