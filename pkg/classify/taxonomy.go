// Package classify 提供作业名称到分类的确定性映射
package classify

import "strings"

// Taxonomy 机型作业目录：机构作业按机型覆盖，其余列表与机型无关
type Taxonomy struct {
	DefaultMechanical []string            `json:"default_mechanical"`
	ModelMechanical   map[string][]string `json:"model_mechanical"` // 键为大写机型名
	Electrical        []string            `json:"electrical"`
	Inspection        []string            `json:"inspection"`
	Finishing         []string            `json:"finishing"`
	SemiFinished      []string            `json:"semi_finished"` // TMS 半成品作业（4 项）
	ExemptModels      []string            `json:"exempt_models"` // 将 TMS 作业归入机构的机型
}

// DefaultTaxonomy 返回生产现场的标准作业目录
func DefaultTaxonomy() *Taxonomy {
	defaultMechanical := []string{
		"CABINET ASSY",
		"BURNER ASSY(TMS)",
		"WET TANK ASSY(TMS)",
		"3-WAY VALVE ASSY",
		"N2 LINE ASSY",
		"N2 TUBE ASSY",
		"CDA LINE ASSY",
		"CDA TUBE ASSY",
		"BCW LINE ASSY",
		"PCW LINE ASSY",
		"O2 LINE ASSY",
		"LNG LINE ASSY",
		"WASTE GAS LINE ASSY",
		"COOLING UNIT(TMS)",
		"REACTOR ASSY(TMS)",
		"HEATING JACKET",
		"CIR LINE TUBING",
		"설비 CLEANING",
		"자주검사",
	}
	gaiaP := []string{
		"CABINET ASSY",
		"BURNER ASSY(TMS)",
		"WET TANK ASSY(TMS)",
		"3-WAY VALVE ASSY",
		"N2 LINE ASSY",
		"N2 TUBE ASSY",
		"CDA LINE ASSY",
		"CDA TUBE ASSY",
		"BCW LINE ASSY",
		"PCW LINE ASSY",
		"WASTE GAS LINE ASSY",
		"COOLING UNIT(TMS)",
		"REACTOR ASSY(TMS)",
		"HEATING JACKET",
		"CIR LINE TUBING",
		"설비 CLEANING",
		"자주검사",
	}
	return &Taxonomy{
		DefaultMechanical: defaultMechanical,
		ModelMechanical: map[string][]string{
			"GAIA-I DUAL": defaultMechanical,
			"GAIA-I":      defaultMechanical,
			"DRAGON":      defaultMechanical,
			"DRAGON DUAL": defaultMechanical,
			"GAIA-II":     defaultMechanical,
			"SWS-I": {
				"CABINET ASSY",
				"BURNER ASSY(TMS)",
				"WET TANK ASSY(TMS)",
				"3-WAY VALVE ASSY",
				"N2 LINE ASSY",
				"N2 TUBE ASSY",
				"BCW LINE ASSY",
				"WASTE GAS LINE ASSY",
				"COOLING UNIT(TMS)",
				"REACTOR ASSY(TMS)",
				"HEATING JACKET",
				"CIR LINE TUBING",
				"설비 CLEANING",
				"자주검사",
			},
			"GAIA-P DUAL": gaiaP,
			"GAIA-P":      gaiaP,
			"IVAS":        defaultMechanical,
		},
		Electrical: []string{
			"AC 백 판넬 작업",
			"DC 백 판넬 작업",
			"케비넷 준비 작업(덕트, 철거작업)",
			"판넬 취부 및 선분리",
			"내, 외부 작업",
			"탱크 작업",
			"판넬 작업",
			"탱크 도킹 후 결선 작업",
		},
		Inspection: []string{
			"LNG/Util",
			"Chamber",
			"I/O 체크, 가동 검사, 전장 마무리",
		},
		Finishing: []string{
			"캐비넷 커버 장착 및 포장",
			"상부 마무리",
		},
		SemiFinished: []string{
			"BURNER ASSY(TMS)",
			"WET TANK ASSY(TMS)",
			"COOLING UNIT(TMS)",
			"REACTOR ASSY(TMS)",
		},
		ExemptModels: []string{"DRAGON", "DRAGON DUAL", "SWS-I"},
	}
}

// MechanicalTasks 返回机型的机构作业列表
// 机型名大小写不敏感；未登记的机型回落到默认列表
func (t *Taxonomy) MechanicalTasks(modelName string) []string {
	if tasks, ok := t.ModelMechanical[strings.ToUpper(strings.TrimSpace(modelName))]; ok {
		return tasks
	}
	return t.DefaultMechanical
}

// IsExemptModel 机型是否属于 TMS 作业归入机构的特例集合
func (t *Taxonomy) IsExemptModel(modelName string) bool {
	upper := strings.ToUpper(strings.TrimSpace(modelName))
	for _, m := range t.ExemptModels {
		if m == upper {
			return true
		}
	}
	return false
}
