// Package scenario 提供场景测试
package scenario

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pdareport/pdareport/pkg/calendar"
	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/model"
	"github.com/pdareport/pdareport/pkg/occurrence"
	"github.com/pdareport/pdareport/pkg/report"
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

// TestProductionOrderPipeline 单订单全流程场景：
// 工时计算、分类、聚合、进度与发生率分析
func TestProductionOrderPipeline(t *testing.T) {
	engine := report.NewEngine(
		calendar.New(calendar.DefaultConfig()),
		classify.DefaultTaxonomy(),
		occurrence.DefaultTolerance,
	)

	result := engine.Process(report.Input{
		OrderNo:     "SO-2025-0618",
		ModelName:   "GAIA-I",
		MechPartner: "대성테크",
		ElecPartner: "한빛전장",
		Rows: []model.TaskRecord{
			// 机构：周一 08:00-12:20，扣两段休息 → 3h，已完成
			{Content: "CABINET ASSY", StartTime: ptrTime(at(2025, 6, 2, 8, 0)), EndTime: ptrTime(at(2025, 6, 2, 12, 20)), Progress: ptrFloat(100)},
			// 机构：跨公休日周末，周四 19:00 → 周一 09:00
			{Content: "N2 LINE ASSY", StartTime: ptrTime(at(2025, 6, 5, 19, 0)), EndTime: ptrTime(at(2025, 6, 9, 9, 0)), Progress: ptrFloat(80)},
			// TMS 半成品（GAIA-I 非特例机型）
			{Content: "BURNER ASSY(TMS)", StartTime: ptrTime(at(2025, 6, 2, 13, 0)), EndTime: ptrTime(at(2025, 6, 2, 15, 0))},
			// 电装：全部缺失 → NaN
			{Content: "탱크 작업"},
			// 检查：进度在但时间缺失，但另一行同名作业已完成 → NaN 豁免
			{Content: "LNG/Util", Progress: ptrFloat(30)},
			{Content: "LNG/Util", Progress: ptrFloat(100)},
		},
		References: model.ReferenceDurations{
			"CABINET ASSY": 0.5, // 3h > 0.5 + 2.0 → 超时
			"N2 LINE ASSY": 20.0,
		},
	})

	// --- 工时 ---
	totals := map[string]model.TaskTotal{}
	for _, tt := range result.TaskTotals {
		totals[tt.Content] = tt
	}
	if got := totals["CABINET ASSY"].TotalHours; got != 3.0 {
		t.Errorf("CABINET ASSY = %v, want 3.0", got)
	}
	// 周四 1h + 周五公休 0 + 周末 2×7h20m + 周一 1h = 16.67
	if got := totals["N2 LINE ASSY"].TotalHours; math.Abs(got-16.67) > 1e-9 {
		t.Errorf("N2 LINE ASSY = %v, want 16.67", got)
	}
	// 13:00-15:00 不跨休息 → 2h
	if got := totals["BURNER ASSY(TMS)"].TotalHours; got != 2.0 {
		t.Errorf("BURNER ASSY(TMS) = %v, want 2.0", got)
	}

	// --- 分类 ---
	if totals["BURNER ASSY(TMS)"].Category != model.CategorySemiFinished {
		t.Errorf("TMS task on GAIA-I should be semi-finished, got %v", totals["BURNER ASSY(TMS)"].Category)
	}
	if totals["탱크 작업"].Category != model.CategoryElectrical {
		t.Errorf("탱크 작업 category = %v", totals["탱크 작업"].Category)
	}

	// --- 进度 ---
	// 机构：CABINET 完成、N2 LINE 80% → 50%
	if got := result.ProgressSummary[model.CategoryMechanical]; got != 50.0 {
		t.Errorf("mechanical progress = %v, want 50", got)
	}
	// TMS：时间戳齐全、无进度 → 隐式完成 100%
	if got := result.ProgressSummary[model.CategorySemiFinished]; got != 100.0 {
		t.Errorf("semi-finished progress = %v, want 100", got)
	}

	// --- 发生率 ---
	if got := result.OccurrenceStats[model.CategoryElectrical].NaNCount; got != 1 {
		t.Errorf("electrical NaN = %d, want 1", got)
	}
	if got := result.OccurrenceStats[model.CategoryInspection].NaNCount; got != 0 {
		t.Errorf("completed inspection task should be NaN-exempt, got %d", got)
	}
	if got := result.OccurrenceStats[model.CategoryMechanical].OTCount; got != 1 {
		t.Errorf("mechanical OT = %d, want 1", got)
	}
	// 协力桶：电装 NaN → 电装协力公司，机构超时 → 机构协力公司
	if got := result.PartnerStats["한빛전장"].NaNCount; got != 1 {
		t.Errorf("elec partner NaN = %d", got)
	}
	if got := result.PartnerStats["대성테크"].OTCount; got != 1 {
		t.Errorf("mech partner OT = %d", got)
	}
}

// TestExemptModelPipeline TMS 特例机型场景：
// DRAGON 机型下 TMS 作业归入机构，不产生半成品桶
func TestExemptModelPipeline(t *testing.T) {
	engine := report.NewEngine(
		calendar.New(calendar.DefaultConfig()),
		classify.DefaultTaxonomy(),
		occurrence.DefaultTolerance,
	)

	result := engine.Process(report.Input{
		OrderNo:     "SO-2025-0619",
		ModelName:   "DRAGON",
		MechPartner: "대성테크",
		ElecPartner: "한빛전장",
		Rows: []model.TaskRecord{
			{Content: "BURNER ASSY(TMS)"},
			{Content: "REACTOR ASSY(TMS)"},
		},
	})

	mech := result.OccurrenceStats[model.CategoryMechanical]
	if mech.TotalCount != 2 || mech.NaNCount != 2 {
		t.Errorf("exempt model TMS tasks should be mechanical, got %+v", mech)
	}
	if semi := result.OccurrenceStats[model.CategorySemiFinished]; semi.TotalCount != 0 {
		t.Errorf("semi-finished should be empty on DRAGON, got %+v", semi)
	}
	if _, ok := result.PartnerStats[occurrence.SemiFinishedBucket]; ok {
		t.Error("TMS bucket should not appear for an exempt model")
	}
	if got := result.PartnerStats["대성테크"].NaNCount; got != 2 {
		t.Errorf("mech partner NaN = %d, want 2", got)
	}
}

// TestIntegrityPipeline 批量订单交叉检查场景
func TestIntegrityPipeline(t *testing.T) {
	engine := report.NewEngine(
		calendar.New(calendar.DefaultConfig()),
		classify.DefaultTaxonomy(),
		occurrence.DefaultTolerance,
	)

	results := engine.ProcessAll([]report.Input{
		{
			OrderNo: "SO-1", ModelName: "GAIA-I", MechPartner: "대성테크", ElecPartner: "한빛전장",
			Rows: []model.TaskRecord{{Content: "CABINET ASSY"}},
		},
		{
			OrderNo: "SO-2", ModelName: "GAIA-I", MechPartner: "대성테크", ElecPartner: "한빛전장",
			Rows: []model.TaskRecord{{Content: "탱크 작업"}},
		},
	})

	rep := report.CrossCheck(results)
	if rep.TotalOrders != 2 {
		t.Errorf("total orders = %d", rep.TotalOrders)
	}
	// 引擎自身产出的统计必然一致，不应有不一致警告
	for _, w := range rep.Warnings {
		if strings.Contains(w, "불일치") {
			t.Errorf("unexpected mismatch warning: %s", w)
		}
	}
	if rep.Summary.TotalNaNByCategory != rep.Summary.TotalNaNByPartner {
		t.Errorf("category/partner NaN totals should match: %d vs %d",
			rep.Summary.TotalNaNByCategory, rep.Summary.TotalNaNByPartner)
	}
	if rep.Summary.TotalNaNByCategory != 2 {
		t.Errorf("NaN total = %d, want 2", rep.Summary.TotalNaNByCategory)
	}
}
