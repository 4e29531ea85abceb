package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hollyoake/coursemark/internal/dto"
)

// Caller is the resolved identity passed down the call chain. It is resolved
// once per request by the middleware; services never re-query who the caller
// is.
type Caller struct {
	UserID  uint
	IsAdmin bool
}

type Claims struct {
	UserID  uint `json:"uid"`
	IsAdmin bool `json:"adm"`
	jwt.RegisteredClaims
}

const callerKey = "caller"

// IssueToken signs an HMAC bearer token for a user. Identity issuance itself
// lives outside this service; this exists for tooling and tests.
func IssueToken(secret string, userID uint, isAdmin bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "coursemark",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parse(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return token.Claims.(*Claims), nil
}

// Middleware resolves the bearer token into a Caller and aborts unauthenticated
// requests.
func Middleware(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "missing bearer token"})
			return
		}
		claims, err := parse(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid token"})
			return
		}
		ctx.Set(callerKey, Caller{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
		ctx.Next()
	}
}

func CallerFromContext(ctx *gin.Context) Caller {
	if v, ok := ctx.Get(callerKey); ok {
		if c, ok := v.(Caller); ok {
			return c
		}
	}
	return Caller{}
}
