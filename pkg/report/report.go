// Package report 将计算、分类、聚合与发生率分析装配为订单级报表
package report

import (
	"time"

	"github.com/pdareport/pdareport/pkg/aggregate"
	"github.com/pdareport/pdareport/pkg/calendar"
	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/logger"
	"github.com/pdareport/pdareport/pkg/model"
	"github.com/pdareport/pdareport/pkg/occurrence"
	"github.com/pdareport/pdareport/pkg/worktime"
)

// Input 单个订单的分析输入
type Input struct {
	OrderNo     string                   `json:"order_no"`
	ModelName   string                   `json:"model_name"`
	MechPartner string                   `json:"mech_partner"`
	ElecPartner string                   `json:"elec_partner"`
	Rows        []model.TaskRecord       `json:"rows"`
	References  model.ReferenceDurations `json:"references,omitempty"`
}

// Engine 报表引擎：核心计算流水线的入口
// 单线程、同步，调用间无状态；配置在构造时注入且不可变
type Engine struct {
	calc       *worktime.Calculator
	classifier *classify.Classifier
	agg        *aggregate.Aggregator
	analyzer   *occurrence.Analyzer
	log        *logger.ReportLogger
}

// NewEngine 创建报表引擎
func NewEngine(cal *calendar.Service, tax *classify.Taxonomy, tolerance float64) *Engine {
	classifier := classify.NewClassifier(tax)
	return &Engine{
		calc:       worktime.NewCalculator(cal),
		classifier: classifier,
		agg:        aggregate.NewAggregator(classifier),
		analyzer:   occurrence.NewAnalyzer(classifier, tolerance),
		log:        logger.NewReportLogger(),
	}
}

// Process 处理单个订单：逐行计算工时与分类，聚合并做发生率分析
func (e *Engine) Process(in Input) model.OrderResult {
	started := time.Now()

	rows := make([]model.TaskRecord, len(in.Rows))
	copy(rows, in.Rows)
	for i := range rows {
		rows[i].WorkingHours = e.calc.Calculate(rows[i].StartTime, rows[i].EndTime)
		rows[i].Category = e.classifier.Classify(rows[i].Content, in.ModelName)
	}

	taskTotals, categoryTotals := e.agg.Aggregate(rows, in.ModelName)
	progress := e.agg.ProgressByCategory(rows, in.ModelName)
	occStats, partnerStats, slotStats := e.analyzer.Analyze(
		rows, taskTotals, in.References, in.ModelName, in.MechPartner, in.ElecPartner,
	)

	result := model.OrderResult{
		OrderNo:         in.OrderNo,
		ModelName:       in.ModelName,
		MechPartner:     in.MechPartner,
		ElecPartner:     in.ElecPartner,
		TaskTotals:      taskTotals,
		CategoryTotals:  categoryTotals,
		ProgressSummary: progress,
		OccurrenceStats: occStats,
		PartnerStats:    partnerStats,
		SlotStats:       slotStats,
	}

	e.log.OrderProcessed(in.OrderNo, in.ModelName, len(rows), time.Since(started))
	return result
}

// ProcessAll 顺序处理多个订单
func (e *Engine) ProcessAll(inputs []Input) []model.OrderResult {
	results := make([]model.OrderResult, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, e.Process(in))
	}
	return results
}
