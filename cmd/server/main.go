// PDAReport 生产报表引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pdareport/pdareport/internal/config"
	"github.com/pdareport/pdareport/internal/database"
	"github.com/pdareport/pdareport/internal/handler"
	"github.com/pdareport/pdareport/internal/metrics"
	"github.com/pdareport/pdareport/internal/middleware"
	"github.com/pdareport/pdareport/internal/repository"
	"github.com/pdareport/pdareport/internal/security"
	"github.com/pdareport/pdareport/pkg/calendar"
	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/logger"
	"github.com/pdareport/pdareport/pkg/report"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("PDAReport 生产报表引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 构建工作日历与分类目录
	calCfg, err := cfg.Calendar.ToCalendar()
	if err != nil {
		logger.Fatal().Err(err).Msg("日历配置无效")
	}
	cal := calendar.New(calCfg)
	taxonomy := classify.DefaultTaxonomy()
	engine := report.NewEngine(cal, taxonomy, cfg.Analyzer.ToleranceHours)

	// 连接数据库（失败时降级为无存档模式，分析接口照常工作）
	var repo repository.ReportRepositoryInterface
	if db, err := database.New(&cfg.Database); err != nil {
		logger.Warn().Err(err).Msg("数据库不可用，存档功能停用")
	} else {
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.Migrate(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("表结构初始化失败")
		}
		cancel()
		repo = repository.NewReportRepository(db)
	}

	reportHandler := handler.NewReportHandler(engine, repo)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdareport"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "PDAReport 生产报表引擎 API v1",
			"endpoints": {
				"report": {
					"analyze": "POST /api/v1/report/analyze",
					"integrity": "POST /api/v1/report/integrity",
					"summary": "GET /api/v1/report/summary?start=YYYY-MM-DD&end=YYYY-MM-DD",
					"runs": "GET /api/v1/report/runs?start=YYYY-MM-DD&end=YYYY-MM-DD&model=&partner=",
					"run": "GET /api/v1/report/run?id=<uuid>"
				},
				"taxonomy": "GET /api/v1/taxonomy",
				"calendar": "GET /api/v1/calendar"
			}
		}`))
	})

	// 订单分析 API
	mux.HandleFunc("/api/v1/report/analyze", reportHandler.Analyze)

	// 定合性检查 API
	mux.HandleFunc("/api/v1/report/integrity", reportHandler.Integrity)

	// 协力公司期间汇总 API
	mux.HandleFunc("/api/v1/report/summary", reportHandler.Summary)

	// 报表执行存档查询 API
	mux.HandleFunc("/api/v1/report/runs", reportHandler.Runs)
	mux.HandleFunc("/api/v1/report/run", reportHandler.Run)

	// 作业分类目录 API - 返回当前生效的机型作业目录
	mux.HandleFunc("/api/v1/taxonomy", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(taxonomy)
	})

	// 工作日历 API - 返回当前生效的班次窗口与公休日
	mux.HandleFunc("/api/v1/calendar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cal.Config())
	})

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	// ========================================
	// 中间件
	// ========================================

	// API密钥认证：API_KEYS 未设置时停用
	var protected http.Handler = loggingMiddleware(mux)
	if keyManager, enabled := security.LoadFromEnv(); enabled {
		logger.Info().Msg("API密钥认证已启用")
		protected = middleware.Auth(&middleware.AuthConfig{
			KeyManager:      keyManager,
			RateLimiter:     security.NewRateLimiter(300, time.Minute),
			SkipPaths:       []string{"/health", "/version", "/metrics"},
			EnableRateLimit: true,
		})(protected)
	}

	// 中间件执行顺序：requestID -> rateLimit -> cors -> recovery -> auth -> logging -> handler
	root := requestIDMiddleware(rateLimitMiddleware(corsMiddleware(middleware.Recovery(protected))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
