package jwt

import (
	"errors"
	"fmt"
	"time"

	"masonry_grid/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const assetRole = "asset"

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewToken issues an editor token signed with secret.
func NewToken(editor models.Editor, secret string, duration time.Duration) (string, error) {
	return sign(editor.Email, models.RoleEditor, secret, duration)
}

// NewAssetToken issues a short lived token granting read access to one asset.
func NewAssetToken(assetID, secret string, duration time.Duration) (string, error) {
	return sign(assetID, assetRole, secret, duration)
}

func sign(subject, role, secret string, duration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse validates tokenString and returns its metadata.
func Parse(tokenString, secret string) (models.TokenMeta, error) {
	var c claims

	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	meta := models.TokenMeta{
		Subject: c.Subject,
		Role:    c.Role,
	}
	if c.IssuedAt != nil {
		meta.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		meta.ExpiresAt = c.ExpiresAt.Unix()
	}

	return meta, nil
}

// IsEditor reports whether tokenString is a valid editor token.
func IsEditor(tokenString, secret string) bool {
	meta, err := Parse(tokenString, secret)
	return err == nil && meta.Role == models.RoleEditor
}

// AssetTokenValid reports whether tokenString grants access to assetID.
func AssetTokenValid(tokenString, assetID, secret string) bool {
	meta, err := Parse(tokenString, secret)
	return err == nil && meta.Role == assetRole && meta.Subject == assetID
}
