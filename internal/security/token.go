package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type AccessClaims struct {
	UserID       int64  `json:"uid"`
	ActiveStatus string `json:"active_status"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.cfg.AccessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.cfg.RefreshTTL }

func (t *TokenIssuer) IssueAccessToken(userID int64, activeStatus, role string) (string, error) {
	now := t.now()
	claims := AccessClaims{
		UserID:       userID,
		ActiveStatus: activeStatus,
		Role:         role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
		},
	}
	return sign(claims, t.cfg.AccessSecret)
}

func (t *TokenIssuer) IssueRefreshToken(userID int64) (string, error) {
	now := t.now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ksuid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
		},
	}
	return sign(claims, t.cfg.RefreshSecret)
}

func (t *TokenIssuer) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(tokenStr, t.cfg.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(tokenStr, t.cfg.RefreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) parse(tokenStr, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// HashRefreshToken is the only form of a refresh token that gets persisted.
func HashRefreshToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
