package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"massage-booking-api/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	Leeway   time.Duration
	Now      func() time.Time // 测试可注入
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Issue sub=用户 id，jti 每次唯一，携带全部角色
func (j *JWTer) Issue(uid, email string, roles []string) (string, error) {
	now := j.now()
	claims := Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ID:        uuid.NewString(),
			Issuer:    j.Issuer,
			Audience:  jwt.ClaimStrings{j.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(j.Issuer),
		jwt.WithAudience(j.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.now),
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.Subject != "" {
		return c, nil
	}
	return nil, ErrInvalidToken
}

// Principal 转成业务层使用的调用方
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.Subject, Email: c.Email, Roles: c.Roles}
}
