// Package middleware 提供HTTP中间件
package middleware

import (
	"net/http"
	"strings"

	"github.com/pdareport/pdareport/internal/security"
	"github.com/pdareport/pdareport/pkg/logger"
)

// AuthConfig 认证配置
type AuthConfig struct {
	KeyManager      *security.APIKeyManager
	RateLimiter     *security.RateLimiter
	SkipPaths       []string // 跳过认证的路径
	EnableRateLimit bool
}

// Auth 认证中间件
// 按密钥做可选的频率限制；跳过路径直接放行
func Auth(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 检查是否跳过认证
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 提取API密钥
			apiKey := security.ExtractAPIKey(r)
			if apiKey == "" {
				http.Error(w, `{"error":"missing_api_key","message":"API密钥未提供"}`, http.StatusUnauthorized)
				return
			}

			// 验证API密钥
			key, err := config.KeyManager.Validate(apiKey)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Err(err).Msg("API密钥验证失败")
				http.Error(w, `{"error":"invalid_api_key","message":"无效的API密钥"}`, http.StatusUnauthorized)
				return
			}

			// 检查频率限制
			if config.EnableRateLimit && config.RateLimiter != nil {
				if !config.RateLimiter.Allow(key.Key) {
					http.Error(w, `{"error":"rate_limit","message":"请求频率超限"}`, http.StatusTooManyRequests)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireScope 权限范围检查中间件
// 密钥缺失时放行（由外层 Auth 决定是否强制认证）
func RequireScope(scope string, keyManager *security.APIKeyManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := security.ExtractAPIKey(r)
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			key, err := keyManager.Validate(apiKey)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			if !key.HasScope(scope) {
				http.Error(w, `{"error":"forbidden","message":"权限不足"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders 安全头中间件
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 安全相关响应头
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		next.ServeHTTP(w, r)
	})
}

// Recovery 恢复中间件（捕获panic）
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("请求处理panic")
				http.Error(w, `{"error":"internal_error","message":"服务器内部错误"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
