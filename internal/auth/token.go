package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"verification-service/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the platform access-token payload this service cares about.
type Claims struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   model.UserRole
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := parseUUIDClaim(mapClaims, "user_id")
	if err != nil {
		return nil, err
	}
	orgID, err := parseUUIDClaim(mapClaims, "org_id")
	if err != nil {
		return nil, err
	}

	role, ok := mapClaims["role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: role claim missing", ErrInvalidToken)
	}

	return &Claims{
		UserID: userID,
		OrgID:  orgID,
		Role:   model.UserRole(role),
	}, nil
}

func parseUUIDClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s claim missing", ErrInvalidToken, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s claim malformed", ErrInvalidToken, key)
	}
	return id, nil
}
