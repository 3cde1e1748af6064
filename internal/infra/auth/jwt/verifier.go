package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

// Claims carried by locally issued tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	gojwt.RegisteredClaims
}

// Verifier accepts HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	log    logrus.FieldLogger
}

func NewVerifier(secret, issuer string, log logrus.FieldLogger) *Verifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, log: log}
}

// Issue signs a token for subject, valid for ttl.
func (v *Verifier) Issue(subject, email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", analysis.Configuration("JWT_SECRET is not configured")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *Verifier) Verify(_ context.Context, token string) *analysis.Caller {
	if token == "" || len(v.secret) == 0 {
		return nil
	}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(v.issuer))
	}

	var claims Claims
	parsed, err := gojwt.ParseWithClaims(token, &claims, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		v.log.WithError(err).Debug("bearer token rejected")
		return nil
	}
	if claims.Subject == "" {
		return nil
	}
	return &analysis.Caller{Subject: claims.Subject, Email: claims.Email}
}
