package middleware

import (
	"github.com/gin-gonic/gin"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/domain/repositories"
	"stablepay.backend/internal/interfaces/http/response"
	"stablepay.backend/pkg/crypto"
)

const (
	// APIKeyHeader carries the tenant API key.
	APIKeyHeader = "X-API-Key"
	// TenantKey is the gin context key holding the resolved tenant.
	TenantKey = "tenant"
)

// AuthMiddleware resolves the calling tenant from the API key digest.
// Keys are stored only as SHA-256 digests, so the lookup is a single
// indexed equality match.
func AuthMiddleware(tenantRepo repositories.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			response.Error(c, domainerrors.Unauthorized("API key is required"))
			c.Abort()
			return
		}

		tenant, err := tenantRepo.GetByAPIKeyHash(c.Request.Context(), crypto.HashAPIKey(key))
		if err != nil {
			response.Error(c, domainerrors.Unauthorized("invalid API key"))
			c.Abort()
			return
		}
		if !tenant.IsActive {
			response.Error(c, domainerrors.Forbidden("tenant is not active"))
			c.Abort()
			return
		}

		c.Set(TenantKey, tenant)
		c.Next()
	}
}

// GetTenant returns the tenant resolved by AuthMiddleware.
func GetTenant(c *gin.Context) (*entities.Tenant, bool) {
	v, exists := c.Get(TenantKey)
	if !exists {
		return nil, false
	}
	tenant, ok := v.(*entities.Tenant)
	return tenant, ok
}
