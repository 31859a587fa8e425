// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pdareport/pdareport/pkg/calendar"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Calendar CalendarConfig `yaml:"calendar"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// CalendarConfig 工作日历配置
// 默认值为生产现场标准：平日 08:00-20:00（上限 12h）、
// 周末 08:00-17:00（上限 9h）、四个固定休息时段
type CalendarConfig struct {
	Holidays        []string `yaml:"holidays"` // YYYY-MM-DD
	WeekdayStart    string   `yaml:"weekday_start"`
	WeekdayEnd      string   `yaml:"weekday_end"`
	WeekdayMaxHours float64  `yaml:"weekday_max_hours"`
	WeekendStart    string   `yaml:"weekend_start"`
	WeekendEnd      string   `yaml:"weekend_end"`
	WeekendMaxHours float64  `yaml:"weekend_max_hours"`
	Breaks          []string `yaml:"breaks"` // "HH:MM-HH:MM"
}

// AnalyzerConfig 发生率分析配置
type AnalyzerConfig struct {
	ToleranceHours float64 `yaml:"tolerance_hours"` // 超时容差（小时）
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "pdareport"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7031),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "pdareport"),
			User:            getEnv("DB_USER", "pdareport"),
			Password:        getEnv("DB_PASSWORD", "pdareport123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Calendar: CalendarConfig{
			Holidays:        getEnvList("CALENDAR_HOLIDAYS", nil),
			WeekdayStart:    getEnv("CALENDAR_WEEKDAY_START", "08:00"),
			WeekdayEnd:      getEnv("CALENDAR_WEEKDAY_END", "20:00"),
			WeekdayMaxHours: getEnvFloat("CALENDAR_WEEKDAY_MAX_HOURS", 12),
			WeekendStart:    getEnv("CALENDAR_WEEKEND_START", "08:00"),
			WeekendEnd:      getEnv("CALENDAR_WEEKEND_END", "17:00"),
			WeekendMaxHours: getEnvFloat("CALENDAR_WEEKEND_MAX_HOURS", 9),
			Breaks: getEnvList("CALENDAR_BREAKS", []string{
				"10:00-10:20", "11:20-12:20", "15:00-15:20", "17:00-18:00",
			}),
		},
		Analyzer: AnalyzerConfig{
			ToleranceHours: getEnvFloat("ANALYZER_TOLERANCE_HOURS", 2),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// CalendarConfig 转换为日历服务配置
// 未设置公休日环境变量时使用内置的生产公休日表
func (c *CalendarConfig) ToCalendar() (calendar.Config, error) {
	base := calendar.DefaultConfig()

	if len(c.Holidays) > 0 {
		holidays := make([]time.Time, 0, len(c.Holidays))
		for _, h := range c.Holidays {
			t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(h), time.Local)
			if err != nil {
				return calendar.Config{}, fmt.Errorf("公休日 '%s' 无法解析: %w", h, err)
			}
			holidays = append(holidays, t)
		}
		base.Holidays = holidays
	}

	var err error
	if base.Weekday.Start, err = parseTimeOfDay(c.WeekdayStart); err != nil {
		return calendar.Config{}, err
	}
	if base.Weekday.End, err = parseTimeOfDay(c.WeekdayEnd); err != nil {
		return calendar.Config{}, err
	}
	base.Weekday.MaxDailyHours = c.WeekdayMaxHours
	if base.Weekend.Start, err = parseTimeOfDay(c.WeekendStart); err != nil {
		return calendar.Config{}, err
	}
	if base.Weekend.End, err = parseTimeOfDay(c.WeekendEnd); err != nil {
		return calendar.Config{}, err
	}
	base.Weekend.MaxDailyHours = c.WeekendMaxHours

	if len(c.Breaks) > 0 {
		breaks := make([]calendar.BreakWindow, 0, len(c.Breaks))
		for _, b := range c.Breaks {
			parts := strings.SplitN(strings.TrimSpace(b), "-", 2)
			if len(parts) != 2 {
				return calendar.Config{}, fmt.Errorf("休息时段 '%s' 格式应为 HH:MM-HH:MM", b)
			}
			start, err := parseTimeOfDay(parts[0])
			if err != nil {
				return calendar.Config{}, err
			}
			end, err := parseTimeOfDay(parts[1])
			if err != nil {
				return calendar.Config{}, err
			}
			breaks = append(breaks, calendar.BreakWindow{Start: start, End: end})
		}
		base.Breaks = breaks
	}

	return base, nil
}

// parseTimeOfDay 解析 "HH:MM" 时刻
func parseTimeOfDay(s string) (calendar.TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return calendar.TimeOfDay{}, fmt.Errorf("时刻 '%s' 格式应为 HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return calendar.TimeOfDay{}, fmt.Errorf("时刻 '%s' 小时无效", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return calendar.TimeOfDay{}, fmt.Errorf("时刻 '%s' 分钟无效", s)
	}
	return calendar.TimeOfDay{Hour: hour, Minute: minute}, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
