// Package occurrence 提供数据缺失（NaN）与超时（OT）发生率分析
package occurrence

import (
	"strings"

	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/model"
)

// DefaultTolerance 超时判定的默认容差（小时，绝对偏移）
const DefaultTolerance = 2.0

// UnknownPartner 协力公司未登记时使用的占位桶
const UnknownPartner = "미정"

// SemiFinishedBucket TMS 半成品分类固定使用的协力桶
const SemiFinishedBucket = "TMS"

// Analyzer 发生率分析器
type Analyzer struct {
	classifier *classify.Classifier
	tolerance  float64
}

// NewAnalyzer 创建发生率分析器
func NewAnalyzer(classifier *classify.Classifier, tolerance float64) *Analyzer {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Analyzer{classifier: classifier, tolerance: tolerance}
}

// Analyze 对单个订单的行集与作业合计做 NaN/超时分析
//
// NaN 判定按行：开始/完成/进度任一缺失。
// 作业在其他行已判完成（进度≥100 或两个时间戳齐全）时豁免；
// 同一 (作业, 分类) 最多计一次 NaN。
// 超时判定按作业合计：实际工时 > 基准 + 容差（严格大于）。
// 基准缺失的作业豁免超时比较。不会因数据不完整返回错误。
// 槽位计数与协力桶各自累计：桶在同名协力公司时合并，槽位不合并。
func (a *Analyzer) Analyze(
	rows []model.TaskRecord,
	totals []model.TaskTotal,
	refs model.ReferenceDurations,
	modelName, mechPartner, elecPartner string,
) (map[model.Category]model.OccurrenceStats, map[string]model.PartnerStats, model.SlotStats) {
	stats := make(map[model.Category]*model.OccurrenceStats, 6)
	for _, cat := range model.AllCategories() {
		stats[cat] = &model.OccurrenceStats{}
	}
	partners := make(map[string]model.PartnerStats)
	var slots model.SlotStats

	completed := completedTasks(rows)
	nanChecked := make(map[[2]string]struct{})

	for i := range rows {
		r := &rows[i]
		if r.Content == "" {
			continue
		}
		cat := a.classifier.Classify(r.Content, modelName)
		s := stats[cat]
		s.TotalCount++

		if !r.IsMissing() {
			continue
		}
		if _, done := completed[r.Content]; done {
			continue
		}
		key := [2]string{r.Content, string(cat)}
		if _, seen := nanChecked[key]; seen {
			continue
		}
		nanChecked[key] = struct{}{}
		s.NaNCount++
		s.NaNTasks = append(s.NaNTasks, r.Content)
		a.rollupNaN(partners, cat, mechPartner, elecPartner)
		switch cat {
		case model.CategoryMechanical:
			slots.MechNaN++
		case model.CategoryElectrical:
			slots.ElecNaN++
		}
	}

	for _, t := range totals {
		ref, ok := refs[t.Content]
		if !ok {
			continue
		}
		if t.TotalHours <= ref+a.tolerance {
			continue
		}
		cat := a.classifier.Classify(t.Content, modelName)
		s := stats[cat]
		s.OTCount++
		s.OTDetails = append(s.OTDetails, model.OTDetail{
			Content:     t.Content,
			ActualHours: t.TotalHours,
		})
		a.rollupOT(partners, cat, mechPartner, elecPartner)
		switch cat {
		case model.CategoryMechanical:
			slots.MechOT++
		case model.CategoryElectrical:
			slots.ElecOT++
		}
	}

	result := make(map[model.Category]model.OccurrenceStats, len(stats))
	for cat, s := range stats {
		result[cat] = *s
	}
	return result, partners, slots
}

// completedTasks 收集已判完成的作业名称集合
func completedTasks(rows []model.TaskRecord) map[string]struct{} {
	done := make(map[string]struct{})
	for i := range rows {
		r := &rows[i]
		if r.Content == "" {
			continue
		}
		if (r.Progress != nil && *r.Progress >= 100) || r.HasBothTimes() {
			done[r.Content] = struct{}{}
		}
	}
	return done
}

func (a *Analyzer) rollupNaN(partners map[string]model.PartnerStats, cat model.Category, mechPartner, elecPartner string) {
	bucket, ok := partnerBucket(cat, mechPartner, elecPartner)
	if !ok {
		return
	}
	s := partners[bucket]
	s.NaNCount++
	partners[bucket] = s
}

func (a *Analyzer) rollupOT(partners map[string]model.PartnerStats, cat model.Category, mechPartner, elecPartner string) {
	bucket, ok := partnerBucket(cat, mechPartner, elecPartner)
	if !ok {
		return
	}
	s := partners[bucket]
	s.OTCount++
	partners[bucket] = s
}

// partnerBucket 将分类映射到协力公司桶
// 机构 → 机构协力公司，电装 → 电装协力公司，TMS 半成品 → 固定 "TMS" 桶。
// 名为 "TMS" 的协力公司改写为 "TMS(m)"/"TMS(e)" 以避免与半成品桶混淆。
func partnerBucket(cat model.Category, mechPartner, elecPartner string) (string, bool) {
	switch cat {
	case model.CategoryMechanical:
		return normalizePartner(mechPartner, "m"), true
	case model.CategoryElectrical:
		return normalizePartner(elecPartner, "e"), true
	case model.CategorySemiFinished:
		return SemiFinishedBucket, true
	}
	return "", false
}

func normalizePartner(partner, suffix string) string {
	partner = strings.TrimSpace(partner)
	if partner == "" {
		return UnknownPartner
	}
	if partner == SemiFinishedBucket {
		return SemiFinishedBucket + "(" + suffix + ")"
	}
	return partner
}
