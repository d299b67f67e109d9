package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tipos de token emitidos por la API.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrWrongTokenType se devuelve cuando se presenta un refresh token como access token o viceversa.
var ErrWrongTokenType = errors.New("jwt: tipo de token incorrecto")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role viaja en el token para que el middleware RBAC decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Role      string `json:"role"` // "admin" | "jefe" | "empleado"
	Name      string `json:"name,omitempty"`
	TokenType string `json:"typ"`
}

// Params datos necesarios para firmar un token.
type Params struct {
	Secret string
	Issuer string
	UserID string
	Role   string
	Name   string
	Type   string
	TTL    time.Duration
}

// Generate firma un token HS256.
func Generate(p Params) (string, error) {
	if p.Secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if p.Type == "" {
		p.Type = TypeAccess
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
		},
		UserID:    p.UserID,
		Role:      p.Role,
		Name:      p.Name,
		TokenType: p.Type,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.Secret))
}

// Parse valida firma y expiración y exige el tipo indicado.
func Parse(secret, tokenString, wantType string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if wantType != "" && claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
