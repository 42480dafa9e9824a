package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

const (
	// ContextIdentityKey stores the authenticated models.Identity in the Gin context.
	ContextIdentityKey = "identity"
	// ContextTokenKey stores the raw bearer token, used by logout.
	ContextTokenKey = "token"
	// ContextClaimsKey stores the verified *utils.Claims.
	ContextClaimsKey = "claims"
)

var (
	errHeaderMissing = utils.NewUnauthorized(40101, "authorization header missing")
	errHeaderFormat  = utils.NewUnauthorized(40102, "invalid authorization header format")
	errEmptyToken    = utils.NewUnauthorized(40103, "empty bearer token")
	errTokenRevoked  = utils.NewUnauthorized(40104, "token revoked")
	errTokenInvalid  = utils.NewUnauthorized(40105, "invalid token")
)

// AuthRequired ensures the request carries a valid, unrevoked bearer token.
func AuthRequired(tokens *utils.TokenManager, blacklist *utils.TokenBlacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			abort(ctx, errHeaderMissing)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(ctx, errHeaderFormat)
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abort(ctx, errEmptyToken)
			return
		}

		if blacklist != nil && blacklist.IsRevoked(tokenString) {
			abort(ctx, errTokenRevoked)
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			abort(ctx, errTokenInvalid)
			return
		}
		if blacklist != nil && claims.IssuedAt != nil && blacklist.IsUserRevoked(claims.UserID, claims.IssuedAt.Time) {
			abort(ctx, errTokenRevoked)
			return
		}

		ctx.Set(ContextIdentityKey, claims.Identity())
		ctx.Set(ContextClaimsKey, claims)
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Next()
	}
}

// CurrentIdentity returns the identity attached by AuthRequired.
func CurrentIdentity(ctx *gin.Context) (models.Identity, bool) {
	v, ok := ctx.Get(ContextIdentityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok && id.UserID != 0
}

// CurrentToken returns the raw token and its claims.
func CurrentToken(ctx *gin.Context) (string, *utils.Claims, bool) {
	token := ctx.GetString(ContextTokenKey)
	v, _ := ctx.Get(ContextClaimsKey)
	claims, ok := v.(*utils.Claims)
	return token, claims, ok && token != ""
}

func abort(ctx *gin.Context, err error) {
	utils.Fail(ctx, err)
	ctx.Abort()
}
