package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"verification-service/internal/model"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestParserParse(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()
	orgID := uuid.New()

	parser := NewParser(secret)

	tokenString := signTestToken(t, secret, jwt.MapClaims{
		"user_id": userID.String(),
		"org_id":  orgID.String(),
		"role":    string(model.UserRoleSecurityOfficer),
	})

	claims, err := parser.Parse(tokenString)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.OrgID != orgID {
		t.Errorf("OrgID = %s, want %s", claims.OrgID, orgID)
	}
	if claims.Role != model.UserRoleSecurityOfficer {
		t.Errorf("Role = %s, want %s", claims.Role, model.UserRoleSecurityOfficer)
	}
}

func TestParserParseRejects(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New().String()
	orgID := uuid.New().String()

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signTestToken(t, "other-secret", jwt.MapClaims{
				"user_id": userID,
				"org_id":  orgID,
				"role":    "SECURITY_ADMIN",
			}),
		},
		{
			name: "missing role",
			token: signTestToken(t, secret, jwt.MapClaims{
				"user_id": userID,
				"org_id":  orgID,
			}),
		},
		{
			name: "malformed user id",
			token: signTestToken(t, secret, jwt.MapClaims{
				"user_id": "not-a-uuid",
				"org_id":  orgID,
				"role":    "SECURITY_ADMIN",
			}),
		},
		{
			name:  "garbage token",
			token: "not.a.token",
		},
	}

	parser := NewParser(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parser.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse(%s) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}
