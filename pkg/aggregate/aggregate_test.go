package aggregate

import (
	"testing"
	"time"

	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/model"
)

func newAgg() *Aggregator {
	return NewAggregator(classify.NewDefaultClassifier())
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func TestAggregate_SumsByContent(t *testing.T) {
	agg := newAgg()

	rows := []model.TaskRecord{
		{Content: "CABINET ASSY", WorkingHours: 2.5},
		{Content: "CABINET ASSY", WorkingHours: 1.25},
		{Content: "탱크 작업", WorkingHours: 4.0},
		{Content: "", WorkingHours: 99}, // 空名称行跳过
	}

	totals, catTotals := agg.Aggregate(rows, "GAIA-I")
	if len(totals) != 2 {
		t.Fatalf("expected 2 task totals, got %d", len(totals))
	}

	// 升序排序：CABINET 3.75 < 탱크 4.0
	if totals[0].Content != "CABINET ASSY" || totals[0].TotalHours != 3.75 {
		t.Errorf("first total = %+v, want CABINET ASSY 3.75", totals[0])
	}
	if totals[0].Category != model.CategoryMechanical {
		t.Errorf("CABINET ASSY category = %v", totals[0].Category)
	}
	if totals[0].FormattedDur != "3h 45m" {
		t.Errorf("formatted duration = %q, want 3h 45m", totals[0].FormattedDur)
	}
	if totals[1].Content != "탱크 작업" || totals[1].Category != model.CategoryElectrical {
		t.Errorf("second total = %+v", totals[1])
	}

	if len(catTotals) != 2 {
		t.Fatalf("expected 2 category totals, got %d", len(catTotals))
	}
	// 分类合计按标准顺序：机构在电装之前
	if catTotals[0].Category != model.CategoryMechanical || catTotals[0].TotalHours != 3.75 || catTotals[0].TaskCount != 1 {
		t.Errorf("mechanical total = %+v", catTotals[0])
	}
	if catTotals[1].Category != model.CategoryElectrical || catTotals[1].TotalHours != 4.0 {
		t.Errorf("electrical total = %+v", catTotals[1])
	}
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	agg := newAgg()

	rows := []model.TaskRecord{
		{Content: "CABINET ASSY", WorkingHours: 1.0 / 3.0},
		{Content: "CABINET ASSY", WorkingHours: 1.0 / 3.0},
	}
	totals, _ := agg.Aggregate(rows, "GAIA-I")
	if totals[0].TotalHours != 0.67 {
		t.Errorf("total should be rounded to 0.67, got %v", totals[0].TotalHours)
	}
}

func TestAggregate_SortStableOnTies(t *testing.T) {
	agg := newAgg()

	rows := []model.TaskRecord{
		{Content: "탱크 작업", WorkingHours: 2},
		{Content: "CABINET ASSY", WorkingHours: 2},
	}
	totals, _ := agg.Aggregate(rows, "GAIA-I")
	// 同工时按名称排序
	if totals[0].Content != "CABINET ASSY" {
		t.Errorf("tie should be broken by content, got %q first", totals[0].Content)
	}
}

func TestProgressByCategory(t *testing.T) {
	agg := newAgg()
	now := time.Now()

	rows := []model.TaskRecord{
		// 机构：两个作业，一个完成一个未完成 → 50%
		{Content: "CABINET ASSY", Progress: ptrFloat(100)},
		{Content: "N2 LINE ASSY", Progress: ptrFloat(60)},
		// 电装：单作业多行取最大进度
		{Content: "탱크 작업", Progress: ptrFloat(40)},
		{Content: "탱크 작업", Progress: ptrFloat(100)},
		// TMS 半成品：时间戳齐全、进度为空 → 隐式完成
		{Content: "BURNER ASSY(TMS)", StartTime: ptrTime(now), EndTime: ptrTime(now.Add(time.Hour))},
	}

	summary := agg.ProgressByCategory(rows, "GAIA-I")

	if summary[model.CategoryMechanical] != 50.0 {
		t.Errorf("mechanical progress = %v, want 50", summary[model.CategoryMechanical])
	}
	if summary[model.CategoryElectrical] != 100.0 {
		t.Errorf("electrical progress = %v, want 100", summary[model.CategoryElectrical])
	}
	if summary[model.CategorySemiFinished] != 100.0 {
		t.Errorf("implicit completion should count, got %v", summary[model.CategorySemiFinished])
	}
}

func TestProgressByCategory_EmptyCategoryIsZero(t *testing.T) {
	agg := newAgg()

	summary := agg.ProgressByCategory(nil, "GAIA-I")
	for _, cat := range []model.Category{model.CategoryMechanical, model.CategoryElectrical, model.CategorySemiFinished} {
		if summary[cat] != 0 {
			t.Errorf("empty category %v should be 0, got %v", cat, summary[cat])
		}
	}
}

func TestProgressByCategory_OneDecimal(t *testing.T) {
	agg := newAgg()

	// 3 个机构作业完成 1 个 → 33.3%
	rows := []model.TaskRecord{
		{Content: "CABINET ASSY", Progress: ptrFloat(100)},
		{Content: "N2 LINE ASSY", Progress: ptrFloat(50)},
		{Content: "O2 LINE ASSY"},
	}
	summary := agg.ProgressByCategory(rows, "GAIA-I")
	if summary[model.CategoryMechanical] != 33.3 {
		t.Errorf("progress = %v, want 33.3", summary[model.CategoryMechanical])
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, "0h 0m"},
		{1.5, "1h 30m"},
		{3.75, "3h 45m"},
		{2.999, "3h 0m"}, // 分钟进位归一化
		{0.25, "0h 15m"},
		{12, "12h 0m"},
	}
	for _, c := range cases {
		if got := FormatHours(c.hours); got != c.want {
			t.Errorf("FormatHours(%v) = %q, want %q", c.hours, got, c.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(3.14159); got != 3.14 {
		t.Errorf("Round2(3.14159) = %v", got)
	}
	if got := Round2(1.236); got != 1.24 {
		t.Errorf("Round2(1.236) = %v", got)
	}
}
