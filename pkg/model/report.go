// Package model 定义生产报表引擎的核心数据模型
package model

// OrderResult 单个订单（单张工作表）的分析结果
type OrderResult struct {
	OrderNo         string                       `json:"order_no"`
	ModelName       string                       `json:"model_name"`
	MechPartner     string                       `json:"mech_partner"`
	ElecPartner     string                       `json:"elec_partner"`
	TaskTotals      []TaskTotal                  `json:"task_totals"`
	CategoryTotals  []CategoryTotal              `json:"category_totals"`
	ProgressSummary ProgressSummary              `json:"progress_summary"`
	OccurrenceStats map[Category]OccurrenceStats `json:"occurrence_stats"`
	PartnerStats    map[string]PartnerStats      `json:"partner_stats"`
	SlotStats       SlotStats                    `json:"slot_stats"`
}

// TotalTaskRows 全分类的行数合计
func (r *OrderResult) TotalTaskRows() int {
	total := 0
	for _, stats := range r.OccurrenceStats {
		total += stats.TotalCount
	}
	return total
}

// RatioBlock 订单级别的 NaN/超时比率汇总（JSON 存档结构）
type RatioBlock struct {
	MechNaNRatio float64 `json:"mech_nan_ratio"`
	MechOTRatio  float64 `json:"mech_ot_ratio"`
	ElecNaNRatio float64 `json:"elec_nan_ratio"`
	ElecOTRatio  float64 `json:"elec_ot_ratio"`
	TMSNaNRatio  float64 `json:"tms_nan_ratio"`
	TMSOTRatio   float64 `json:"tms_ot_ratio"`
}

// Ratios 从分类统计计算订单级比率
func (r *OrderResult) Ratios() RatioBlock {
	var rb RatioBlock
	if s, ok := r.OccurrenceStats[CategoryMechanical]; ok {
		rb.MechNaNRatio, rb.MechOTRatio = s.NaNRatio(), s.OTRatio()
	}
	if s, ok := r.OccurrenceStats[CategoryElectrical]; ok {
		rb.ElecNaNRatio, rb.ElecOTRatio = s.NaNRatio(), s.OTRatio()
	}
	if s, ok := r.OccurrenceStats[CategorySemiFinished]; ok {
		rb.TMSNaNRatio, rb.TMSOTRatio = s.NaNRatio(), s.OTRatio()
	}
	return rb
}

// ReportRun 一次报表执行（持久化单位）
type ReportRun struct {
	BaseModel
	ExecutionTime string        `json:"execution_time" db:"execution_time"` // "20250618_231207"
	Session       int           `json:"session" db:"session"`               // 当日回次（周一=1）
	Results       []OrderResult `json:"results" db:"-"`
}

// PartnerPeriodSummary 协力公司在统计期间内的累计指标
type PartnerPeriodSummary struct {
	Partner    string `json:"partner"`
	NaNCount   int    `json:"nan_count"`
	OTCount    int    `json:"ot_count"`
	OrderCount int    `json:"order_count"`
}
