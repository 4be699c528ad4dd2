package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the authenticated principal carried by a token.
type Claims struct {
	UserID string
	Role   string
}

// Manager signs and verifies the HS256 bearer tokens used by both the HTTP
// API and the websocket handshake.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), ttl: 7 * 24 * time.Hour}
}

func (m *Manager) Generate(userID string, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"iat":    now.Unix(),
		"exp":    now.Add(m.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

func (m *Manager) Verify(tokenString string) (Claims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, _ := mc["userId"].(string)
	role, _ := mc["role"].(string)
	if userID == "" || role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: userID, Role: role}, nil
}
