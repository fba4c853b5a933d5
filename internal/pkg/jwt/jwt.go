package jwt

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(identity user.Identity) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues a token carrying the identity claims the engine reads.
// Tokens are normally minted by the identity directory; this exists for tooling and tests.
func (j *JWTService) GenerateAccessToken(identity user.Identity) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     identity.UserID,
		"employee_id": returnValueOrNil(identity.EmployeeID),
		"company_id":  identity.CompanyID,
		"role":        string(identity.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromClaims maps verified token claims to a user.Identity.
func IdentityFromClaims(claims map[string]interface{}) (user.Identity, error) {
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return user.Identity{}, user.ErrCompanyIDRequired
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return user.Identity{}, user.ErrInvalidClaims
	}

	userID, _ := claims["user_id"].(string)
	employeeID, _ := claims["employee_id"].(string)

	return user.Identity{
		UserID:     userID,
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Role:       user.Role(roleStr),
	}, nil
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
