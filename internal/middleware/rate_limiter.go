package middleware

import (
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldir/internal/app/models/dto"
	"github.com/yigit/schooldir/internal/pkg/logger"
)

// DefaultRateLimit is used when the configured limit is not positive.
const DefaultRateLimit = 5

func clientKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	retryAfter := int(time.Until(info.ResetTime).Seconds()) + 1
	c.Header("Retry-After", strconv.Itoa(retryAfter))

	logger.Warn().
		Str("request_id", GetRequestID(c)).
		Str("client_ip", c.ClientIP()).
		Msg("Rate limit exceeded")

	respondError(c, http.StatusTooManyRequests,
		dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "too many requests, please try again later").
			WithSeverity(dto.ErrorSeverityWarning))
}

// RateLimiter allows reqPerSec requests per second per client IP.
func RateLimiter(reqPerSec int) gin.HandlerFunc {
	if reqPerSec <= 0 {
		reqPerSec = DefaultRateLimit
	}

	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: uint(reqPerSec),
	})

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      clientKey,
		ErrorHandler: rateLimitExceeded,
	})
}
