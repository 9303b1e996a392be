package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Kind separates vault owners from nominees signing in with an emailed code.
type Kind string

const (
	KindUser    Kind = "user"
	KindNominee Kind = "nominee"
)

// Claims carries the standard claims plus the identity of the caller.
// Owners are identified by UserID, nominees by Email.
type Claims struct {
	jwt.RegisteredClaims
	Kind   Kind   `json:"kind"`
	UserID int64  `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Identity is the authenticated caller extracted from an access token.
type Identity struct {
	Kind   Kind
	UserID int64
	Email  string
}

func GenerateToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	return sign(Claims{Kind: KindUser, UserID: userID}, secretKey, validityDuration)
}

// GenerateNomineeToken issues a read-only token for the nominee with the given email.
func GenerateNomineeToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return sign(Claims{Kind: KindNominee, Email: strings.ToLower(email)}, secretKey, validityDuration)
}

func sign(c Claims, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates the signature and expiry of tokenString.
func ParseToken(tokenString string, secretKey []byte) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	switch claims.Kind {
	case KindUser:
		if claims.UserID <= 0 {
			return nil, common.ErrInvalidToken
		}
	case KindNominee:
		if claims.Email == "" {
			return nil, common.ErrInvalidToken
		}
	default:
		return nil, common.ErrInvalidToken
	}

	return &Identity{Kind: claims.Kind, UserID: claims.UserID, Email: claims.Email}, nil
}

// GetUserIDFromToken accepts owner tokens only.
func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	id, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return 0, err
	}
	if id.Kind != KindUser {
		return 0, common.ErrInvalidToken
	}
	return id.UserID, nil
}
