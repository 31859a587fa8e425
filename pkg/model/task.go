// Package model 定义生产报表引擎的核心数据模型
package model

import "time"

// TaskRecord 作业日志的一行记录
// 时间戳和进度率均为可空：缺失表示未开始/进行中，而非错误
type TaskRecord struct {
	Content   string     `json:"content"`    // 作业名称（日志内非唯一）
	StartTime *time.Time `json:"start_time"` // 开始时间
	EndTime   *time.Time `json:"end_time"`   // 完成时间
	Progress  *float64   `json:"progress"`   // 进行率 [0,100]

	// 以下为计算派生字段
	WorkingHours float64  `json:"working_hours"` // 工作日消耗时间
	Category     Category `json:"category"`      // 作业分类
}

// HasBothTimes 开始和完成时间是否都存在
func (r *TaskRecord) HasBothTimes() bool {
	return r.StartTime != nil && r.EndTime != nil
}

// IsMissing 任一字段（开始/完成/进度）缺失即视为数据缺失
func (r *TaskRecord) IsMissing() bool {
	return r.StartTime == nil || r.EndTime == nil || r.Progress == nil
}

// EffectiveProgress 返回有效进度率
// 两个时间戳齐全但进度为空时视为 100（隐式完成规则）
func (r *TaskRecord) EffectiveProgress() *float64 {
	if r.Progress == nil && r.HasBothTimes() {
		full := 100.0
		return &full
	}
	return r.Progress
}

// TaskTotal 按作业名称聚合的工时合计
type TaskTotal struct {
	Content      string   `json:"content"`
	Category     Category `json:"category"`
	TotalHours   float64  `json:"total_hours"`
	FormattedDur string   `json:"formatted_duration"` // "{h}h {m}m"
}

// CategoryTotal 按分类聚合的工时合计
type CategoryTotal struct {
	Category   Category `json:"category"`
	TotalHours float64  `json:"total_hours"`
	TaskCount  int      `json:"task_count"` // 不同作业名称数
}

// ProgressSummary 三个主要分类的完成进度（%）
type ProgressSummary map[Category]float64

// OTDetail 超时作业明细
type OTDetail struct {
	Content     string  `json:"content"`
	ActualHours float64 `json:"actual_hours"`
}

// OccurrenceStats 单个分类的 NaN/超时发生统计
// 仅在一次分析过程中写入，分析结束后只读
type OccurrenceStats struct {
	TotalCount int        `json:"total_count"`
	NaNCount   int        `json:"nan_count"`
	OTCount    int        `json:"ot_count"`
	NaNTasks   []string   `json:"nan_tasks"`
	OTDetails  []OTDetail `json:"ot_task_details"`
}

// NaNRatio NaN 发生率（%），分母为 0 时返回 0
func (s *OccurrenceStats) NaNRatio() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.NaNCount) / float64(s.TotalCount) * 100
}

// OTRatio 超时发生率（%），分母为 0 时返回 0
func (s *OccurrenceStats) OTRatio() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.OTCount) / float64(s.TotalCount) * 100
}

// PartnerStats 协力公司级别的汇总
type PartnerStats struct {
	NaNCount int `json:"nan_count"`
	OTCount  int `json:"ot_count"`
}

// SlotStats 机构/电装槽位各自的 NaN/超时累计
// 协力公司桶在同名或未登记时会合并，槽位计数保持逐槽可对账
type SlotStats struct {
	MechNaN int `json:"mech_nan"`
	MechOT  int `json:"mech_ot"`
	ElecNaN int `json:"elec_nan"`
	ElecOT  int `json:"elec_ot"`
}

// ReferenceDurations 作业名称 → 基准工时（小时）的映射
// 由外部基准数据源提供，条目缺失即豁免该作业的超时比较
type ReferenceDurations map[string]float64
