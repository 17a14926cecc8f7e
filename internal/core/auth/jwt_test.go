package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massage-booking-api/internal/domain"
)

func newJWTer() *JWTer {
	return &JWTer{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "massage-api",
		Audience: "massage-web",
		TTL:      2 * time.Hour,
	}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("u-1", "ana@example.com", []string{domain.RoleClient, domain.RoleAdmin})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.Subject)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.ElementsMatch(t, []string{"Client", "Admin"}, c.Roles)
	assert.NotEmpty(t, c.ID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), c.ExpiresAt.Time, 5*time.Second)

	p := c.Principal()
	assert.True(t, p.IsAdmin())
	assert.Equal(t, "u-1", p.UserID)
}

func TestUniqueTokenID(t *testing.T) {
	j := newJWTer()
	a, _ := j.Issue("u-1", "a@b.c", nil)
	b, _ := j.Issue("u-1", "a@b.c", nil)
	ca, err := j.Parse(a)
	require.NoError(t, err)
	cb, err := j.Parse(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParseRejects(t *testing.T) {
	j := newJWTer()
	good, err := j.Issue("u-1", "a@b.c", nil)
	require.NoError(t, err)

	expired := newJWTer()
	expired.Now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	old, err := expired.Issue("u-1", "a@b.c", nil)
	require.NoError(t, err)

	otherIss := newJWTer()
	otherIss.Issuer = "someone-else"
	wrongIss, _ := otherIss.Issue("u-1", "a@b.c", nil)

	otherAud := newJWTer()
	otherAud.Audience = "mobile"
	wrongAud, _ := otherAud.Issue("u-1", "a@b.c", nil)

	otherKey := newJWTer()
	otherKey.Secret = []byte("ffffffffffffffffffffffffffffffff")
	wrongKey, _ := otherKey.Issue("u-1", "a@b.c", nil)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        old,
		"wrong issuer":   wrongIss,
		"wrong audience": wrongAud,
		"wrong key":      wrongKey,
		"alg none":       none,
		"tampered":       good[:len(good)-2] + strings.Repeat("x", 2),
		"garbage":        "not-a-jwt",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := j.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
