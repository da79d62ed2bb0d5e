package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"example.com/layali/planner-gateway/internal/models"
)

type TokenType string

const TokenTypeAccess TokenType = "access"

var (
	ErrTokenType    = errors.New("token type mismatch")
	ErrTokenSubject = errors.New("token subject is empty")
)

// Claims повторяет access-токен, который выдает маркетплейс.
type Claims struct {
	TokenType TokenType   `json:"typ"`
	Role      models.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier проверяет access-токены маркетплейса по общему секрету.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier создает проверку токенов. Пустой issuer не проверяется.
func NewVerifier(secret string, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// ParseAccessToken валидирует access-токен и возвращает claims.
func (v *Verifier) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, ErrTokenType
	}

	if claims.Subject == "" {
		return nil, ErrTokenSubject
	}

	if claims.Role == "" {
		claims.Role = models.RolePersonal
	}

	return claims, nil
}

// NewAccessToken подписывает access-токен тем же секретом. Нужен для локальной
// разработки без маркетплейса.
func (v *Verifier) NewAccessToken(userID string, role models.Role, ttl time.Duration) (string, time.Time, error) {
	now := v.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		TokenType: TokenTypeAccess,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
