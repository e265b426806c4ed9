package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// AdminTokenTTL is fixed; user tokens follow the configured TTL.
	AdminTokenTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both user and admin tokens. User tokens set UserID and
// Email, admin tokens set AdminID and Role.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
	AdminID string `json:"adminId,omitempty"`
	Role    string `json:"role,omitempty"`
}

type Manager struct {
	secret  []byte
	userTTL time.Duration
	now     func() time.Time
}

func NewManager(secret string, userTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), userTTL: userTTL, now: time.Now}
}

func (m *Manager) IssueUserToken(userID, email string) (string, error) {
	return m.sign(Claims{UserID: userID, Email: email}, m.userTTL)
}

func (m *Manager) IssueAdminToken(adminID string) (string, error) {
	return m.sign(Claims{AdminID: adminID, Role: RoleAdmin}, AdminTokenTTL)
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return ss, nil
}

// Parse verifies the signature and expiry of tokenStr.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
