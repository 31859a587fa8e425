package model

import (
	"testing"
	"time"
)

func TestTaskRecord_IsMissing(t *testing.T) {
	now := time.Now()
	progress := 50.0

	complete := TaskRecord{StartTime: &now, EndTime: &now, Progress: &progress}
	if complete.IsMissing() {
		t.Error("complete row should not be missing")
	}

	cases := []TaskRecord{
		{EndTime: &now, Progress: &progress},
		{StartTime: &now, Progress: &progress},
		{StartTime: &now, EndTime: &now},
		{},
	}
	for i, r := range cases {
		if !r.IsMissing() {
			t.Errorf("case %d should be missing", i)
		}
	}
}

func TestTaskRecord_EffectiveProgress(t *testing.T) {
	now := time.Now()

	// 两个时间戳齐全、进度为空 → 隐式 100
	implicit := TaskRecord{StartTime: &now, EndTime: &now}
	if p := implicit.EffectiveProgress(); p == nil || *p != 100 {
		t.Errorf("implicit completion should give 100, got %v", p)
	}

	// 显式进度优先
	explicit := 60.0
	r := TaskRecord{StartTime: &now, EndTime: &now, Progress: &explicit}
	if p := r.EffectiveProgress(); p == nil || *p != 60 {
		t.Errorf("explicit progress should win, got %v", p)
	}

	// 时间戳不全且无进度 → nil
	partial := TaskRecord{StartTime: &now}
	if p := partial.EffectiveProgress(); p != nil {
		t.Errorf("partial row should have nil progress, got %v", *p)
	}
}

func TestTimeRange_Overlap(t *testing.T) {
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local)
	span := TimeRange{Start: base, End: base.Add(4 * time.Hour)} // 08:00-12:00

	cases := []struct {
		name  string
		other TimeRange
		want  time.Duration
	}{
		{"contained", TimeRange{base.Add(time.Hour), base.Add(2 * time.Hour)}, time.Hour},
		{"partial", TimeRange{base.Add(3 * time.Hour), base.Add(5 * time.Hour)}, time.Hour},
		{"touching", TimeRange{base.Add(4 * time.Hour), base.Add(5 * time.Hour)}, 0},
		{"disjoint", TimeRange{base.Add(6 * time.Hour), base.Add(7 * time.Hour)}, 0},
		{"covering", TimeRange{base.Add(-time.Hour), base.Add(5 * time.Hour)}, 4 * time.Hour},
	}
	for _, c := range cases {
		if got := span.Overlap(c.other); got != c.want {
			t.Errorf("%s: Overlap = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCategory_Valid(t *testing.T) {
	for _, cat := range AllCategories() {
		if !cat.Valid() {
			t.Errorf("%v should be valid", cat)
		}
	}
	if Category("뭔가").Valid() {
		t.Error("unknown category should be invalid")
	}
}
