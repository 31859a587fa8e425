package occurrence

import (
	"testing"
	"time"

	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/model"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(classify.NewDefaultClassifier(), DefaultTolerance)
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func TestAnalyze_NaNDetection(t *testing.T) {
	a := newAnalyzer()
	now := time.Now()

	rows := []model.TaskRecord{
		// 完整行：不计 NaN
		{Content: "CABINET ASSY", StartTime: ptrTime(now), EndTime: ptrTime(now.Add(time.Hour)), Progress: ptrFloat(100)},
		// 进度缺失
		{Content: "N2 LINE ASSY", StartTime: ptrTime(now), EndTime: nil, Progress: nil},
	}

	stats, _, _ := a.Analyze(rows, nil, nil, "GAIA-I", "协力A", "协力B")

	mech := stats[model.CategoryMechanical]
	if mech.TotalCount != 2 {
		t.Errorf("mechanical total count = %d, want 2", mech.TotalCount)
	}
	if mech.NaNCount != 1 {
		t.Errorf("mechanical NaN count = %d, want 1", mech.NaNCount)
	}
	if len(mech.NaNTasks) != 1 || mech.NaNTasks[0] != "N2 LINE ASSY" {
		t.Errorf("NaN tasks = %v", mech.NaNTasks)
	}
}

func TestAnalyze_NaNDeduplication(t *testing.T) {
	a := newAnalyzer()

	// 同一作业两条缺失行只计一次 NaN
	rows := []model.TaskRecord{
		{Content: "N2 LINE ASSY"},
		{Content: "N2 LINE ASSY"},
	}
	stats, _, _ := a.Analyze(rows, nil, nil, "GAIA-I", "", "")

	mech := stats[model.CategoryMechanical]
	if mech.NaNCount != 1 {
		t.Errorf("duplicate missing rows should count once, got %d", mech.NaNCount)
	}
	if mech.TotalCount != 2 {
		t.Errorf("total count should still be 2, got %d", mech.TotalCount)
	}
}

func TestAnalyze_CompletedTaskExemption(t *testing.T) {
	a := newAnalyzer()
	now := time.Now()

	// 第一行缺失，但同一作业的第二行已完成 → 豁免
	rows := []model.TaskRecord{
		{Content: "CABINET ASSY"},
		{Content: "CABINET ASSY", StartTime: ptrTime(now), EndTime: ptrTime(now.Add(time.Hour))},
	}
	stats, _, _ := a.Analyze(rows, nil, nil, "GAIA-I", "", "")

	if got := stats[model.CategoryMechanical].NaNCount; got != 0 {
		t.Errorf("completed task should be exempt from NaN, got %d", got)
	}

	// 进度 100 同样构成完成
	rows = []model.TaskRecord{
		{Content: "CABINET ASSY"},
		{Content: "CABINET ASSY", Progress: ptrFloat(100)},
	}
	stats, _, _ = a.Analyze(rows, nil, nil, "GAIA-I", "", "")
	if got := stats[model.CategoryMechanical].NaNCount; got != 0 {
		t.Errorf("progress 100 should exempt the task, got %d", got)
	}
}

func TestAnalyze_OvertimeBoundary(t *testing.T) {
	a := newAnalyzer()

	totals := []model.TaskTotal{
		{Content: "CABINET ASSY", TotalHours: 7.0},
		{Content: "N2 LINE ASSY", TotalHours: 7.01},
		{Content: "O2 LINE ASSY", TotalHours: 100}, // 无基准 → 豁免
	}
	refs := model.ReferenceDurations{
		"CABINET ASSY": 5.0,
		"N2 LINE ASSY": 5.0,
	}

	stats, _, _ := a.Analyze(nil, totals, refs, "GAIA-I", "", "")

	mech := stats[model.CategoryMechanical]
	// 严格大于：7.0 == 5.0 + 2.0 不算超时，7.01 算
	if mech.OTCount != 1 {
		t.Fatalf("OT count = %d, want 1", mech.OTCount)
	}
	if mech.OTDetails[0].Content != "N2 LINE ASSY" || mech.OTDetails[0].ActualHours != 7.01 {
		t.Errorf("OT detail = %+v", mech.OTDetails[0])
	}
}

func TestAnalyze_PartnerRollup(t *testing.T) {
	a := newAnalyzer()

	// 机构 NaN → 机构协力桶，电装 NaN → 电装协力桶，
	// 半成品 NaN → 固定 TMS 桶，检查分类不入协力桶
	rows := []model.TaskRecord{
		{Content: "CABINET ASSY"},
		{Content: "탱크 작업"},
		{Content: "BURNER ASSY(TMS)"},
		{Content: "LNG/Util"},
	}
	_, partners, _ := a.Analyze(rows, nil, nil, "GAIA-I", "협력A", "협력B")

	if partners["협력A"].NaNCount != 1 {
		t.Errorf("mech partner NaN = %d, want 1", partners["협력A"].NaNCount)
	}
	if partners["협력B"].NaNCount != 1 {
		t.Errorf("elec partner NaN = %d, want 1", partners["협력B"].NaNCount)
	}
	if partners[SemiFinishedBucket].NaNCount != 1 {
		t.Errorf("TMS bucket NaN = %d, want 1", partners[SemiFinishedBucket].NaNCount)
	}
	if len(partners) != 3 {
		t.Errorf("inspection should not create a partner bucket, got %v", partners)
	}
}

func TestAnalyze_PartnerNormalization(t *testing.T) {
	a := newAnalyzer()

	rows := []model.TaskRecord{
		{Content: "CABINET ASSY"},
		{Content: "탱크 작업"},
	}

	// 名为 TMS 的协力公司改写，避免与半成品桶混淆
	_, partners, _ := a.Analyze(rows, nil, nil, "GAIA-I", "TMS", "TMS")
	if partners["TMS(m)"].NaNCount != 1 {
		t.Errorf("mech partner named TMS should map to TMS(m), got %v", partners)
	}
	if partners["TMS(e)"].NaNCount != 1 {
		t.Errorf("elec partner named TMS should map to TMS(e), got %v", partners)
	}

	// 协力公司未登记 → 占位桶
	_, partners, _ = a.Analyze(rows, nil, nil, "GAIA-I", "", "")
	if partners[UnknownPartner].NaNCount != 2 {
		t.Errorf("empty partners should share the %s bucket, got %v", UnknownPartner, partners)
	}
}

func TestAnalyze_SlotCountsWithSharedPartner(t *testing.T) {
	a := newAnalyzer()

	// 机构与电装协力公司同名 → 协力桶合并，但槽位计数各自保留
	rows := []model.TaskRecord{
		{Content: "CABINET ASSY"},
		{Content: "탱크 작업"},
	}
	_, partners, slots := a.Analyze(rows, nil, nil, "GAIA-I", "ACME", "ACME")

	if partners["ACME"].NaNCount != 2 {
		t.Errorf("shared partner bucket NaN = %d, want 2", partners["ACME"].NaNCount)
	}
	if slots.MechNaN != 1 || slots.ElecNaN != 1 {
		t.Errorf("slot NaN counts = %d/%d, want 1/1", slots.MechNaN, slots.ElecNaN)
	}

	totals := []model.TaskTotal{
		{Content: "CABINET ASSY", TotalHours: 8},
		{Content: "탱크 작업", TotalHours: 8},
	}
	refs := model.ReferenceDurations{"CABINET ASSY": 1, "탱크 작업": 1}
	_, _, slots = a.Analyze(nil, totals, refs, "GAIA-I", "ACME", "ACME")
	if slots.MechOT != 1 || slots.ElecOT != 1 {
		t.Errorf("slot OT counts = %d/%d, want 1/1", slots.MechOT, slots.ElecOT)
	}
}

func TestAnalyze_AllCategoriesInitialized(t *testing.T) {
	a := newAnalyzer()

	stats, _, _ := a.Analyze(nil, nil, nil, "GAIA-I", "", "")
	if len(stats) != len(model.AllCategories()) {
		t.Errorf("expected stats for all %d categories, got %d", len(model.AllCategories()), len(stats))
	}
	for cat, s := range stats {
		if s.TotalCount != 0 || s.NaNCount != 0 || s.OTCount != 0 {
			t.Errorf("category %v should be zeroed, got %+v", cat, s)
		}
	}
}

func TestAnalyze_CustomTolerance(t *testing.T) {
	a := NewAnalyzer(classify.NewDefaultClassifier(), 0.5)

	totals := []model.TaskTotal{{Content: "CABINET ASSY", TotalHours: 5.6}}
	refs := model.ReferenceDurations{"CABINET ASSY": 5.0}

	stats, _, _ := a.Analyze(nil, totals, refs, "GAIA-I", "", "")
	if stats[model.CategoryMechanical].OTCount != 1 {
		t.Errorf("5.6 > 5.0 + 0.5 should be overtime")
	}
}

func TestNewAnalyzer_DefaultsTolerance(t *testing.T) {
	a := NewAnalyzer(classify.NewDefaultClassifier(), 0)
	if a.tolerance != DefaultTolerance {
		t.Errorf("non-positive tolerance should default to %v, got %v", DefaultTolerance, a.tolerance)
	}
}

func TestOccurrenceStats_Ratios(t *testing.T) {
	s := model.OccurrenceStats{TotalCount: 4, NaNCount: 1, OTCount: 2}
	if s.NaNRatio() != 25.0 {
		t.Errorf("NaN ratio = %v, want 25", s.NaNRatio())
	}
	if s.OTRatio() != 50.0 {
		t.Errorf("OT ratio = %v, want 50", s.OTRatio())
	}

	empty := model.OccurrenceStats{}
	if empty.NaNRatio() != 0 || empty.OTRatio() != 0 {
		t.Error("zero denominator should give 0 ratios")
	}
}
