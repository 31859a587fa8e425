// Package worktime 提供工作日耗时计算：按日遍历区间，排除周末窗口外时间、公休日与固定休息时段
package worktime

import (
	"time"

	"github.com/pdareport/pdareport/pkg/calendar"
	"github.com/pdareport/pdareport/pkg/model"
)

// Calculator 工作时间计算器
// 无内部状态，可在多次调用间复用；配置注入自日历服务
type Calculator struct {
	cal *calendar.Service
}

// NewCalculator 创建工作时间计算器
func NewCalculator(cal *calendar.Service) *Calculator {
	return &Calculator{cal: cal}
}

// Calculate 计算 start 到 end 之间的净工作小时数
// 任一端缺失或 end <= start 时返回 0，不报错。
// 结果不做舍入，舍入在报表输出层进行。
func (c *Calculator) Calculate(start, end *time.Time) float64 {
	if start == nil || end == nil {
		return 0
	}
	return c.CalculateBetween(*start, *end)
}

// CalculateBetween 按日遍历计算净工作小时数
func (c *Calculator) CalculateBetween(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}

	total := 0.0
	cursor := start

	for cursor.Before(end) {
		// 公休日整天跳过，先于平日/周末窗口判断
		if c.cal.IsHoliday(cursor) {
			cursor = c.nextShiftStart(cursor)
			continue
		}

		win := c.cal.ShiftWindow(cursor)

		workStart := win.Start.At(cursor)
		if cursor.After(workStart) {
			workStart = cursor
		}
		workEnd := win.End.At(cursor)
		if end.Before(workEnd) {
			workEnd = end
		}

		daily := workEnd.Sub(workStart).Hours()

		// 休息时段按挂钟时间每天重复应用
		span := model.TimeRange{Start: workStart, End: workEnd}
		for _, b := range c.cal.BreakWindows() {
			overlap := span.Overlap(model.TimeRange{
				Start: b.Start.At(cursor),
				End:   b.End.At(cursor),
			})
			daily -= overlap.Hours()
		}

		// 窗口外区间会算出负值，按日钳到 0
		if daily < 0 {
			daily = 0
		}
		if daily > win.MaxDailyHours {
			daily = win.MaxDailyHours
		}
		total += daily

		cursor = c.nextShiftStart(cursor)
	}

	return total
}

// nextShiftStart 次日的班次开始时刻（按次日的星期几选择平日/周末窗口）
func (c *Calculator) nextShiftStart(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	return c.cal.ShiftWindow(next).Start.At(next)
}
