package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/outfitterhq/contracts-service/internal/model"
)

type accessClaims struct {
	jwt.RegisteredClaims
	Role        string `json:"role"`
	Email       string `json:"email"`
	OutfitterID string `json:"outfitter_id"`
}

// Parser validates HMAC-signed access tokens and extracts the Principal.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}

	principal := model.Principal{
		Email: strings.ToLower(strings.TrimSpace(claims.Email)),
		Role:  model.Role(strings.ToUpper(strings.TrimSpace(claims.Role))),
	}

	if claims.Subject != "" {
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return model.Principal{}, fmt.Errorf("invalid subject: %w", err)
		}
		principal.UserID = userID
	}
	if claims.OutfitterID != "" {
		outfitterID, err := uuid.Parse(claims.OutfitterID)
		if err != nil {
			return model.Principal{}, fmt.Errorf("invalid outfitter_id: %w", err)
		}
		principal.OutfitterID = outfitterID
	}

	if principal.Role != model.RoleAdmin && principal.Role != model.RoleClient {
		return model.Principal{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	if principal.Role == model.RoleClient && principal.Email == "" {
		return model.Principal{}, fmt.Errorf("client token missing email")
	}
	if principal.Role == model.RoleAdmin && principal.OutfitterID == uuid.Nil {
		return model.Principal{}, fmt.Errorf("admin token missing outfitter_id")
	}
	return principal, nil
}
