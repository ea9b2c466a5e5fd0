package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrBadToken = errors.New("invalid token")

// Claims is what the API reads back from a token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      models.Role
	SessionID string
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) Secret() []byte { return t.secret }

// Issue signs an HS256 token bound to a session.
func (t *Tokens) Issue(u models.User, sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(t.ttl)
	claims := jwt.MapClaims{
		"id":    u.ID.String(),
		"email": u.Email,
		"role":  string(u.Role),
		"sid":   sessionID,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a raw token. Only HMAC signatures are accepted.
func (t *Tokens) Parse(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrBadToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrBadToken
	}
	return ClaimsFromMap(mc)
}

// ClaimsFromMap reads the claims Issue writes.
func ClaimsFromMap(mc jwt.MapClaims) (Claims, error) {
	rawID, _ := mc["id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: id: %v", ErrBadToken, err)
	}
	role, _ := mc["role"].(string)
	sid, _ := mc["sid"].(string)
	if sid == "" {
		return Claims{}, fmt.Errorf("%w: missing session", ErrBadToken)
	}
	email, _ := mc["email"].(string)
	return Claims{UserID: id, Email: email, Role: models.Role(role), SessionID: sid}, nil
}
