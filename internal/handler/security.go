package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/auth"
)

// APIKeyHeader carries the back-office API key.
const APIKeyHeader = "X-API-Key"

const apiKeyInfoKey = "apikey.info"

// CallerLimiter counts requests per caller key. Admit writes the rejection
// itself and returns false when the caller is over its limit.
type CallerLimiter interface {
	Admit(w http.ResponseWriter, key string) bool
}

// RequireAPIKey returns a gin middleware that rejects requests without a
// valid API key holding scope.
func RequireAPIKey(a Authenticator, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		info, err := a.Authenticate(ctx, c.GetHeader(APIKeyHeader), scope)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: auth.ErrUnauthorized.Error()})
				return
			}
			respondError(c, err)
			return
		}

		lg := zctx.From(ctx).With(zap.String("api_key", info.Name))
		c.Request = c.Request.WithContext(zctx.Base(ctx, lg))
		c.Set(apiKeyInfoKey, info)
		c.Next()
	}
}

// LimitAPIKey counts requests per API key already validated by RequireAPIKey.
// It must run after RequireAPIKey; requests without a validated key pass.
func LimitAPIKey(l CallerLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(apiKeyInfoKey)
		info, _ := v.(*auth.APIKeyInfo)
		if !ok || info == nil {
			c.Next()
			return
		}
		if !l.Admit(c.Writer, "key:"+info.ID) {
			c.Abort()
			return
		}
		c.Next()
	}
}
