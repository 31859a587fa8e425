// Package calendar 提供工作日历服务：公休日查询、平日/周末班次窗口、固定休息时段
package calendar

import (
	"time"
)

// TimeOfDay 一天内的时刻（挂钟时间，不含日期）
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// At 将时刻落到指定日期上
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// Window 班次窗口：上班时刻、下班时刻、单日最大工时
type Window struct {
	Start         TimeOfDay `json:"start"`
	End           TimeOfDay `json:"end"`
	MaxDailyHours float64   `json:"max_daily_hours"`
}

// BreakWindow 休息时段（每个工作日相同，按配置顺序应用）
type BreakWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Config 日历配置（进程启动时加载一次，运行期间不可变）
type Config struct {
	Holidays []time.Time   `json:"holidays"`
	Weekday  Window        `json:"weekday"`
	Weekend  Window        `json:"weekend"`
	Breaks   []BreakWindow `json:"breaks"`
}

// DefaultConfig 返回生产现场的标准配置
// 平日 08:00-20:00（上限 12h），周末 08:00-17:00（上限 9h）
// 休息：上午茶歇、午餐、下午茶歇、晚餐
func DefaultConfig() Config {
	return Config{
		Holidays: []time.Time{
			date(2025, 1, 1),
			date(2025, 1, 27),
			date(2025, 1, 28),
			date(2025, 1, 29),
			date(2025, 3, 1),
			date(2025, 5, 5),
			date(2025, 5, 6),
			date(2025, 6, 6),
			date(2025, 8, 15),
			date(2025, 10, 3),
			date(2025, 10, 6),
			date(2025, 10, 7),
			date(2025, 10, 8),
			date(2025, 10, 9),
			date(2025, 12, 25),
		},
		Weekday: Window{
			Start:         TimeOfDay{8, 0},
			End:           TimeOfDay{20, 0},
			MaxDailyHours: 12,
		},
		Weekend: Window{
			Start:         TimeOfDay{8, 0},
			End:           TimeOfDay{17, 0},
			MaxDailyHours: 9,
		},
		Breaks: []BreakWindow{
			{Start: TimeOfDay{10, 0}, End: TimeOfDay{10, 20}},
			{Start: TimeOfDay{11, 20}, End: TimeOfDay{12, 20}},
			{Start: TimeOfDay{15, 0}, End: TimeOfDay{15, 20}},
			{Start: TimeOfDay{17, 0}, End: TimeOfDay{18, 0}},
		},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// Service 日历服务（静态配置上的纯函数，无持久状态）
type Service struct {
	cfg      Config
	holidays map[string]struct{}
}

// New 创建日历服务
func New(cfg Config) *Service {
	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, h := range cfg.Holidays {
		holidays[dayKey(h)] = struct{}{}
	}
	return &Service{cfg: cfg, holidays: holidays}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsHoliday 指定日期是否为公休日（按日历日比较，忽略时刻）
func (s *Service) IsHoliday(t time.Time) bool {
	_, ok := s.holidays[dayKey(t)]
	return ok
}

// IsWeekend 指定日期是否为周六/周日
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ShiftWindow 返回指定日期适用的班次窗口
// 只看星期几：周六/周日返回周末窗口，其余返回平日窗口。
// 公休日不改变这里的返回值，公休跳过由调用方负责。
func (s *Service) ShiftWindow(t time.Time) Window {
	if IsWeekend(t) {
		return s.cfg.Weekend
	}
	return s.cfg.Weekday
}

// BreakWindows 按配置顺序返回固定休息时段（每天相同）
func (s *Service) BreakWindows() []BreakWindow {
	return s.cfg.Breaks
}

// Config 返回服务持有的配置
func (s *Service) Config() Config {
	return s.cfg
}
