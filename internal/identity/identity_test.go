package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
}

func newTestVerifier(t *testing.T, issuer string) *Verifier {
	t.Helper()
	v, err := NewVerifier(Options{Secret: "test-secret", Issuer: issuer, Now: fixedNow})
	require.NoError(t, err)
	return v
}

func TestVerify_RoundTrip(t *testing.T) {
	v := newTestVerifier(t, "https://idp.example.edu")
	want := Identity{UserID: "uid-123", DisplayName: "Jordan", PhotoURL: "https://img/j.png", Email: "j@example.edu"}

	token, err := v.Sign(want, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = v.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, want.UserID, got.UserID)
}

func TestVerify_Rejects(t *testing.T) {
	v := newTestVerifier(t, "https://idp.example.edu")

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func(sub string) Claims {
		return Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "https://idp.example.edu",
			ExpiresAt: jwt.NewNumericDate(fixedNow().Add(time.Hour)),
		}}
	}

	expired := valid("uid")
	expired.ExpiresAt = jwt.NewNumericDate(fixedNow().Add(-time.Minute))

	wrongIssuer := valid("uid")
	wrongIssuer.Issuer = "https://evil.example.com"

	noExpiry := valid("uid")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		wantErr error
		name    string
		token   string
	}{
		{name: "empty", token: "  ", wantErr: ErrInvalidToken},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: sign(valid("uid"), jwt.SigningMethodHS256, []byte("other")), wantErr: ErrInvalidToken},
		{name: "wrong algorithm", token: sign(valid("uid"), jwt.SigningMethodHS512, []byte("test-secret")), wantErr: ErrInvalidToken},
		{name: "expired", token: sign(expired, jwt.SigningMethodHS256, []byte("test-secret")), wantErr: ErrInvalidToken},
		{name: "missing expiry", token: sign(noExpiry, jwt.SigningMethodHS256, []byte("test-secret")), wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: sign(wrongIssuer, jwt.SigningMethodHS256, []byte("test-secret")), wantErr: ErrInvalidToken},
		{name: "missing subject", token: sign(valid(""), jwt.SigningMethodHS256, []byte("test-secret")), wantErr: ErrMissingSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier(Options{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSign_RequiresSubject(t *testing.T) {
	v := newTestVerifier(t, "")
	_, err := v.Sign(Identity{DisplayName: "nobody"}, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
