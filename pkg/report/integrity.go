package report

import (
	"fmt"

	"github.com/pdareport/pdareport/pkg/model"
)

// 主要分类的 NaN 比率超过该值时发出警告
const highNaNRatioThreshold = 80.0

// CategoryBreakdown 分类维度的 NaN/OT 累计
type CategoryBreakdown struct {
	NaN int `json:"nan"`
	OT  int `json:"ot"`
}

// IntegritySummary 定合性检查的汇总数字
type IntegritySummary struct {
	TotalNaNByCategory int                                  `json:"total_nan_by_category"`
	TotalNaNByPartner  int                                  `json:"total_nan_by_partner"`
	TotalOTByCategory  int                                  `json:"total_ot_by_category"`
	TotalOTByPartner   int                                  `json:"total_ot_by_partner"`
	CategoryBreakdown  map[model.Category]CategoryBreakdown `json:"category_breakdown"`
	PartnerBreakdown   map[string]model.PartnerStats        `json:"partner_breakdown"`
}

// IntegrityReport 跨订单结果的定合性检查报告
type IntegrityReport struct {
	TotalOrders int              `json:"total_orders"`
	Warnings    []string         `json:"warnings"`
	Summary     IntegritySummary `json:"summary"`
}

// CrossCheck 对一批订单结果做定合性交叉检查
// 检查 1：机构/电装分类统计与协力公司统计是否一致
// 检查 2：主要分类的 NaN 比率是否异常偏高
// 检查 3：实际出现异常的订单数与总数的对账
func CrossCheck(results []model.OrderResult) *IntegrityReport {
	rep := &IntegrityReport{
		TotalOrders: len(results),
		Summary: IntegritySummary{
			CategoryBreakdown: make(map[model.Category]CategoryBreakdown),
			PartnerBreakdown:  make(map[string]model.PartnerStats),
		},
	}

	categoryTotals := make(map[model.Category]int) // total_count 累计，用于比率检查
	var mechPartnerNaN, elecPartnerNaN int

	for _, r := range results {
		for cat, stats := range r.OccurrenceStats {
			bd := rep.Summary.CategoryBreakdown[cat]
			bd.NaN += stats.NaNCount
			bd.OT += stats.OTCount
			rep.Summary.CategoryBreakdown[cat] = bd

			rep.Summary.TotalNaNByCategory += stats.NaNCount
			rep.Summary.TotalOTByCategory += stats.OTCount
			categoryTotals[cat] += stats.TotalCount
		}

		for bucket, stats := range r.PartnerStats {
			ps := rep.Summary.PartnerBreakdown[bucket]
			ps.NaNCount += stats.NaNCount
			ps.OTCount += stats.OTCount
			rep.Summary.PartnerBreakdown[bucket] = ps

			rep.Summary.TotalNaNByPartner += stats.NaNCount
			rep.Summary.TotalOTByPartner += stats.OTCount
		}

		// 协力桶在同名或未登记时会合并，对账须用逐槽计数
		mechPartnerNaN += r.SlotStats.MechNaN
		elecPartnerNaN += r.SlotStats.ElecNaN
	}

	mechCatNaN := rep.Summary.CategoryBreakdown[model.CategoryMechanical].NaN
	elecCatNaN := rep.Summary.CategoryBreakdown[model.CategoryElectrical].NaN
	if mechCatNaN != mechPartnerNaN {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"⚠️ 기구 NaN 불일치: 카테고리(%d) ≠ 협력사(%d)", mechCatNaN, mechPartnerNaN))
	}
	if elecCatNaN != elecPartnerNaN {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"⚠️ 전장 NaN 불일치: 카테고리(%d) ≠ 협력사(%d)", elecCatNaN, elecPartnerNaN))
	}

	for _, cat := range []model.Category{model.CategoryMechanical, model.CategoryElectrical, model.CategorySemiFinished} {
		total := categoryTotals[cat]
		if total == 0 {
			continue
		}
		nan := rep.Summary.CategoryBreakdown[cat].NaN
		ratio := float64(nan) / float64(total) * 100
		if ratio > highNaNRatioThreshold {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"⚠️ %s NaN 비율 높음: %.1f%% (%d/%d)", cat, ratio, nan, total))
		}
	}

	anomalous := 0
	for _, r := range results {
		for _, stats := range r.OccurrenceStats {
			if stats.NaNCount > 0 || stats.OTCount > 0 {
				anomalous++
				break
			}
		}
	}
	if anomalous != len(results) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"ℹ️ 처리된 모델: %d/%d (정상 범위 내 모델 제외)", anomalous, len(results)))
	}

	return rep
}
