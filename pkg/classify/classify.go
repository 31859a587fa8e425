package classify

import (
	"strings"

	"github.com/pdareport/pdareport/pkg/model"
)

// rule 分类规则：(判定, 分类) 按顺序求值，首个命中者生效
type rule struct {
	match    func(content, modelName string) bool
	category model.Category
}

// Classifier 作业分类器
// 同一 (content, model) 输入始终得到同一分类
type Classifier struct {
	tax   *Taxonomy
	rules []rule

	semiFinished map[string]struct{}
	electrical   map[string]struct{}
	inspection   map[string]struct{}
	finishing    map[string]struct{}
	mechByModel  map[string]map[string]struct{}
	mechDefault  map[string]struct{}
}

// NewClassifier 基于作业目录创建分类器
func NewClassifier(tax *Taxonomy) *Classifier {
	c := &Classifier{
		tax:          tax,
		semiFinished: toSet(tax.SemiFinished),
		electrical:   toSet(tax.Electrical),
		inspection:   toSet(tax.Inspection),
		finishing:    toSet(tax.Finishing),
		mechDefault:  toSet(tax.DefaultMechanical),
		mechByModel:  make(map[string]map[string]struct{}, len(tax.ModelMechanical)),
	}
	for m, tasks := range tax.ModelMechanical {
		c.mechByModel[m] = toSet(tasks)
	}

	// 优先顺序承载语义：TMS 特例机型的判定必须先于半成品判定，
	// 同样 4 个 TMS 作业名在两张表里都出现，归属由机型决定
	c.rules = []rule{
		{c.matchExemptMechanical, model.CategoryMechanical},
		{c.matchSemiFinished, model.CategorySemiFinished},
		{c.matchMechanical, model.CategoryMechanical},
		{c.matchElectrical, model.CategoryElectrical},
		{c.matchInspection, model.CategoryInspection},
		{c.matchFinishing, model.CategoryFinishing},
	}
	return c
}

// NewDefaultClassifier 使用标准作业目录创建分类器
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultTaxonomy())
}

// Classify 将作业名称映射到分类
func (c *Classifier) Classify(content, modelName string) model.Category {
	content = strings.TrimSpace(content)
	for _, r := range c.rules {
		if r.match(content, modelName) {
			return r.category
		}
	}
	return model.CategoryOther
}

func (c *Classifier) mechanicalSet(modelName string) map[string]struct{} {
	if set, ok := c.mechByModel[strings.ToUpper(strings.TrimSpace(modelName))]; ok {
		return set
	}
	return c.mechDefault
}

func (c *Classifier) matchExemptMechanical(content, modelName string) bool {
	if !c.tax.IsExemptModel(modelName) {
		return false
	}
	_, ok := c.mechanicalSet(modelName)[content]
	return ok
}

func (c *Classifier) matchSemiFinished(content, modelName string) bool {
	if c.tax.IsExemptModel(modelName) {
		return false
	}
	_, ok := c.semiFinished[content]
	return ok
}

func (c *Classifier) matchMechanical(content, modelName string) bool {
	_, ok := c.mechanicalSet(modelName)[content]
	return ok
}

func (c *Classifier) matchElectrical(content, _ string) bool {
	_, ok := c.electrical[content]
	return ok
}

func (c *Classifier) matchInspection(content, _ string) bool {
	_, ok := c.inspection[content]
	return ok
}

func (c *Classifier) matchFinishing(content, _ string) bool {
	_, ok := c.finishing[content]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
