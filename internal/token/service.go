// Package token は署名付きセッショントークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTで、サーバー側に状態を持たない。
// 発行後の失効手段はなく、有効期限まで有効であり続ける。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 検証失敗の内部区分。クライアントへのレスポンスでは区別せず、
// ログとメトリクスでのみ使い分ける。
var (
	// ErrMalformed はトークンがJWTとして解析できないことを示す。
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature は署名が検証に失敗したことを示す。
	ErrBadSignature = errors.New("invalid token signature")
	// ErrExpired はトークンの有効期限が切れていることを示す。
	ErrExpired = errors.New("token expired")
)

const issuerName = "kawase"

// Claims はセッショントークンのペイロードを表す。
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service はセッショントークンの発行と検証を行う。
// 署名シークレットはプロセス全体で1つ、起動時に設定されローテーションしない。
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService はServiceを生成する。
// シークレットが空の場合はエラーを返す（デフォルト鍵での署名は行わない）。
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Issue は指定ユーザーに紐づくセッショントークンを発行する。
// 有効期限は発行時刻からTTL経過後。
func (s *Service) Issue(userID int64, username string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、Claimsを返す。
// 失敗理由はErrMalformed、ErrBadSignature、ErrExpiredのいずれかに分類される。
func (s *Service) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	return claims, nil
}
