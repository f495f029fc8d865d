package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// JWTService implements domain.TokenService with HS256-signed tokens.
// Access and refresh tokens are signed with distinct secrets so that an
// access-token leak cannot mint refresh tokens and vice versa.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a new JWT token service.
func NewJWTService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) domain.TokenService {
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (j *JWTService) claims(subject uint, ttl time.Duration, jti string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(subject), 10),
		"iss": j.issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": jti,
	}
}

// CreateAccessToken implements domain.TokenService.
func (j *JWTService) CreateAccessToken(subject uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, j.claims(subject, j.accessTTL, uuid.NewString()))
	return token.SignedString(j.accessSecret)
}

// CreateRefreshToken implements domain.TokenService. The JTI is returned so
// the caller can persist a matching session record.
func (j *JWTService) CreateRefreshToken(subject uint) (string, string, error) {
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, j.claims(subject, j.refreshTTL, jti))
	signed, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ParseAccessToken implements domain.TokenService.
func (j *JWTService) ParseAccessToken(tokenString string) (*domain.TokenClaims, error) {
	return j.parse(tokenString, j.accessSecret, false)
}

// ParseRefreshToken implements domain.TokenService.
func (j *JWTService) ParseRefreshToken(tokenString string) (*domain.TokenClaims, error) {
	return j.parse(tokenString, j.refreshSecret, false)
}

// ParseRefreshTokenAllowExpired implements domain.TokenService. Expiry is
// not enforced so a logout request can still clean up the session of an
// already-expired token.
func (j *JWTService) ParseRefreshTokenAllowExpired(tokenString string) (*domain.TokenClaims, error) {
	return j.parse(tokenString, j.refreshSecret, true)
}

func (j *JWTService) parse(tokenString string, secret []byte, allowExpired bool) (*domain.TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	if !token.Valid && !allowExpired {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	subject, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return nil, domain.ErrTokenMalformed
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	if !allowExpired && time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	return &domain.TokenClaims{
		Subject:   uint(subject),
		JTI:       jti,
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}
