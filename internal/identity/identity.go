// Package identity turns identity-provider ID tokens into stable user identities.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity errors.
var (
	ErrInvalidToken   = errors.New("invalid identity token")
	ErrMissingSubject = errors.New("identity token has no subject")
	ErrMissingSecret  = errors.New("identity secret is not configured")
)

// Identity is the verified caller.
type Identity struct {
	UserID      string
	DisplayName string
	PhotoURL    string
	Email       string
}

// Claims are the ID token claims we read.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Options configures a Verifier.
type Options struct {
	Now      func() time.Time
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Verifier checks HS256-signed ID tokens.
type Verifier struct {
	now      func() time.Time
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewVerifier creates a verifier. The secret is required.
func NewVerifier(opts Options) (*Verifier, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, ErrMissingSecret
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Verifier{
		now:      opts.Now,
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		audience: opts.Audience,
		leeway:   opts.Leeway,
	}, nil
}

// Verify validates the token signature, expiry and issuer and returns the identity it names.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrMissingSubject
	}

	return Identity{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		Email:       claims.Email,
	}, nil
}

// Sign issues a token for id that the matching Verifier accepts. It backs the
// local development login and tests.
func (v *Verifier) Sign(id Identity, ttl time.Duration) (string, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return "", ErrMissingSubject
	}

	now := v.now()
	claims := Claims{
		Name:    id.DisplayName,
		Picture: id.PhotoURL,
		Email:   id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
