package calendar

import (
	"testing"
	"time"
)

func TestService_IsHoliday(t *testing.T) {
	svc := New(DefaultConfig())

	// 2025-01-01 是公休日，时刻不影响判断
	if !svc.IsHoliday(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Error("2025-01-01 should be a holiday")
	}
	if !svc.IsHoliday(time.Date(2025, 1, 1, 15, 30, 0, 0, time.Local)) {
		t.Error("holiday check should ignore the time of day")
	}

	if svc.IsHoliday(time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local)) {
		t.Error("2025-01-02 should not be a holiday")
	}
}

func TestService_ShiftWindow(t *testing.T) {
	svc := New(DefaultConfig())

	// 2025-06-02 是周一
	weekday := svc.ShiftWindow(time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local))
	if weekday.Start.Hour != 8 || weekday.End.Hour != 20 {
		t.Errorf("weekday window should be 08:00-20:00, got %02d:%02d-%02d:%02d",
			weekday.Start.Hour, weekday.Start.Minute, weekday.End.Hour, weekday.End.Minute)
	}
	if weekday.MaxDailyHours != 12 {
		t.Errorf("weekday max daily hours should be 12, got %v", weekday.MaxDailyHours)
	}

	// 2025-06-07 是周六
	weekend := svc.ShiftWindow(time.Date(2025, 6, 7, 9, 0, 0, 0, time.Local))
	if weekend.Start.Hour != 8 || weekend.End.Hour != 17 {
		t.Errorf("weekend window should be 08:00-17:00, got %02d:%02d-%02d:%02d",
			weekend.Start.Hour, weekend.Start.Minute, weekend.End.Hour, weekend.End.Minute)
	}
	if weekend.MaxDailyHours != 9 {
		t.Errorf("weekend max daily hours should be 9, got %v", weekend.MaxDailyHours)
	}
}

func TestService_ShiftWindowOnHoliday(t *testing.T) {
	svc := New(DefaultConfig())

	// 公休日不改变窗口选择，公休跳过由调用方负责
	// 2025-06-06（显忠日）是周五
	win := svc.ShiftWindow(time.Date(2025, 6, 6, 9, 0, 0, 0, time.Local))
	if win.End.Hour != 20 {
		t.Errorf("holiday on a weekday should still return the weekday window, got end %d", win.End.Hour)
	}
}

func TestIsWeekend(t *testing.T) {
	cases := []struct {
		date    time.Time
		weekend bool
	}{
		{time.Date(2025, 6, 6, 0, 0, 0, 0, time.Local), false}, // 周五
		{time.Date(2025, 6, 7, 0, 0, 0, 0, time.Local), true},  // 周六
		{time.Date(2025, 6, 8, 0, 0, 0, 0, time.Local), true},  // 周日
		{time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local), false}, // 周一
	}
	for _, c := range cases {
		if got := IsWeekend(c.date); got != c.weekend {
			t.Errorf("IsWeekend(%s) = %v, want %v", c.date.Format("2006-01-02"), got, c.weekend)
		}
	}
}

func TestService_BreakWindows(t *testing.T) {
	svc := New(DefaultConfig())

	breaks := svc.BreakWindows()
	if len(breaks) != 4 {
		t.Fatalf("expected 4 break windows, got %d", len(breaks))
	}

	// 午餐时段 11:20-12:20
	lunch := breaks[1]
	if lunch.Start.Hour != 11 || lunch.Start.Minute != 20 || lunch.End.Hour != 12 || lunch.End.Minute != 20 {
		t.Errorf("lunch break should be 11:20-12:20, got %02d:%02d-%02d:%02d",
			lunch.Start.Hour, lunch.Start.Minute, lunch.End.Hour, lunch.End.Minute)
	}
}

func TestTimeOfDay_At(t *testing.T) {
	tod := TimeOfDay{Hour: 8, Minute: 30}
	date := time.Date(2025, 6, 2, 14, 55, 12, 0, time.Local)

	got := tod.At(date)
	want := time.Date(2025, 6, 2, 8, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("At() = %v, want %v", got, want)
	}
}

func TestDefaultConfig_Holidays(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Holidays) != 15 {
		t.Errorf("expected 15 holidays, got %d", len(cfg.Holidays))
	}
}
