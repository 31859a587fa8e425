package worktime

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 表格日期序列值的纪元（1899-12-30）
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.Local)

var (
	dateOnlyRe   = regexp.MustCompile(`^\d{4}\.\s*\d{1,2}\.\s*\d{1,2}$`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	refTimeRe    = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)
)

// ParseTimestamp 解析日志里的时间戳文本
// 接受两种写法：数字日期序列值，或本地化日期时间串
// （"2025. 6. 2 15:04:05"，可带 오전/오후 上下午标记，可省略时刻部分）。
// 解析失败返回 nil，不报错 —— 上游按数据缺失处理。
func ParseTimestamp(input string) *time.Time {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(serial)
	}

	s = multiSpaceRe.ReplaceAllString(s, " ")
	if dateOnlyRe.MatchString(s) {
		s += " 00:00:00"
	}
	s = strings.ReplaceAll(s, "오전", "AM")
	s = strings.ReplaceAll(s, "오후", "PM")

	layout := "2006. 1. 2 15:04:05"
	if strings.Contains(s, "AM") || strings.Contains(s, "PM") {
		layout = "2006. 1. 2 PM 3:04:05"
	}

	t, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// fromSerial 日期序列值转时间：整数部分为天数，小数部分为当天时刻
// 天数按日历日推进，避免历史时区偏移污染挂钟时间
func fromSerial(serial float64) *time.Time {
	days := int(serial)
	secs := math.Round((serial - float64(days)) * 86400)
	t := serialEpoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second)
	return &t
}

// ParseReferenceHours 解析基准工时文本
// 带 h/m 单位的写法（"3h 30m"、"45m"）转为小时数，
// 否则按纯小数解析。无法解析时返回 (0, false)。
func ParseReferenceHours(input string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, "h") || strings.Contains(s, "m") {
		m := refTimeRe.FindStringSubmatch(s)
		if m == nil || (m[1] == "" && m[2] == "") {
			return 0, false
		}
		hours := 0.0
		if m[1] != "" {
			h, _ := strconv.Atoi(m[1])
			hours += float64(h)
		}
		if m[2] != "" {
			min, _ := strconv.Atoi(m[2])
			hours += float64(min) / 60.0
		}
		return hours, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseProgress 解析进度率文本（"80%"、"100"）
// 空串或解析失败返回 nil
func ParseProgress(input string) *float64 {
	s := strings.TrimSpace(strings.ReplaceAll(input, "%", ""))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
