// Package model 定义生产报表引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Category 作业分类（封闭枚举）
type Category string

const (
	CategoryMechanical   Category = "기구"      // 机构装配
	CategoryElectrical   Category = "전장"      // 电装
	CategoryInspection   Category = "검사"      // 检查
	CategoryFinishing    Category = "마무리"     // 收尾
	CategorySemiFinished Category = "TMS_반제품" // TMS 半成品
	CategoryOther        Category = "기타"      // 其他
)

// AllCategories 按报表输出顺序返回全部分类
func AllCategories() []Category {
	return []Category{
		CategoryMechanical,
		CategorySemiFinished,
		CategoryElectrical,
		CategoryInspection,
		CategoryFinishing,
		CategoryOther,
	}
}

// Valid 检查分类是否为已知枚举值
func (c Category) Valid() bool {
	switch c {
	case CategoryMechanical, CategoryElectrical, CategoryInspection,
		CategoryFinishing, CategorySemiFinished, CategoryOther:
		return true
	}
	return false
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// TimeRange 时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Overlap 返回两个时间范围的重叠时长，不重叠时为 0
func (tr TimeRange) Overlap(other TimeRange) time.Duration {
	start := tr.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := tr.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start)
}

// Contains 检查时间范围是否包含某个时间点
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}
