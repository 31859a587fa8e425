// Package aggregate 提供按作业/分类的工时聚合与进度汇总
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/model"
)

// Aggregator 工时聚合器
type Aggregator struct {
	classifier *classify.Classifier
}

// NewAggregator 创建聚合器
func NewAggregator(classifier *classify.Classifier) *Aggregator {
	return &Aggregator{classifier: classifier}
}

// Aggregate 按作业名称聚合工时并附加分类
// 跳过作业名称为空的行；结果按总工时升序、同值时按名称排序
func (a *Aggregator) Aggregate(rows []model.TaskRecord, modelName string) ([]model.TaskTotal, []model.CategoryTotal) {
	sums := make(map[string]float64)
	var order []string
	for i := range rows {
		r := &rows[i]
		if r.Content == "" {
			continue
		}
		if _, seen := sums[r.Content]; !seen {
			order = append(order, r.Content)
		}
		sums[r.Content] += r.WorkingHours
	}

	totals := make([]model.TaskTotal, 0, len(order))
	for _, content := range order {
		hours := Round2(sums[content])
		totals = append(totals, model.TaskTotal{
			Content:      content,
			Category:     a.classifier.Classify(content, modelName),
			TotalHours:   hours,
			FormattedDur: FormatHours(hours),
		})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].TotalHours != totals[j].TotalHours {
			return totals[i].TotalHours < totals[j].TotalHours
		}
		return totals[i].Content < totals[j].Content
	})

	return totals, a.byCategory(totals)
}

// byCategory 按分类汇总作业合计
func (a *Aggregator) byCategory(totals []model.TaskTotal) []model.CategoryTotal {
	sums := make(map[model.Category]*model.CategoryTotal)
	for _, t := range totals {
		ct, ok := sums[t.Category]
		if !ok {
			ct = &model.CategoryTotal{Category: t.Category}
			sums[t.Category] = ct
		}
		ct.TotalHours = Round2(ct.TotalHours + t.TotalHours)
		ct.TaskCount++
	}

	var result []model.CategoryTotal
	for _, cat := range model.AllCategories() {
		if ct, ok := sums[cat]; ok {
			result = append(result, *ct)
		}
	}
	return result
}

// ProgressByCategory 计算三个主要分类的完成进度（%）
// 每个作业名称取各行进度的最大值；两个时间戳齐全但进度为空的行
// 先按 100 处理（隐式完成规则）。分类内无作业时为 0。
func (a *Aggregator) ProgressByCategory(rows []model.TaskRecord, modelName string) model.ProgressSummary {
	type taskKey struct {
		content  string
		category model.Category
	}
	maxProgress := make(map[taskKey]float64)
	hasProgress := make(map[taskKey]bool)

	for i := range rows {
		r := &rows[i]
		if r.Content == "" {
			continue
		}
		key := taskKey{r.Content, a.classifier.Classify(r.Content, modelName)}
		if _, seen := maxProgress[key]; !seen {
			maxProgress[key] = 0
		}
		if p := r.EffectiveProgress(); p != nil {
			hasProgress[key] = true
			if *p > maxProgress[key] {
				maxProgress[key] = *p
			}
		}
	}

	summary := make(model.ProgressSummary, 3)
	for _, cat := range []model.Category{model.CategoryMechanical, model.CategoryElectrical, model.CategorySemiFinished} {
		total, completed := 0, 0
		for key, max := range maxProgress {
			if key.category != cat {
				continue
			}
			total++
			if hasProgress[key] && max == 100.0 {
				completed++
			}
		}
		if total == 0 {
			summary[cat] = 0
			continue
		}
		summary[cat] = math.Round(float64(completed)/float64(total)*1000) / 10
	}
	return summary
}

// FormatHours 将小数小时格式化为 "{h}h {m}m"
// 分钟四舍五入进位到 60 时归一化（避免 "3h 60m"）
func FormatHours(decimalHours float64) string {
	hours := int(decimalHours)
	minutes := int(math.Round((decimalHours - float64(hours)) * 60))
	if minutes >= 60 {
		hours++
		minutes -= 60
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
