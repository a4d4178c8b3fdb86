package model

// CellRef 单元格坐标（如 "B4"）
type CellRef struct {
	Cell string `json:"cell"`
}

// DataSource 指标数据来源：同一工作表中的实际值与预算值单元格
type DataSource struct {
	Sheet  string  `json:"sheet"`
	Actual CellRef `json:"actual"`
	Budget CellRef `json:"budget"`
}

// MetricDefinition 检查清单中的单个指标定义
type MetricDefinition struct {
	Name             string     `json:"name"`
	DataSource       DataSource `json:"data_source"`
	Threshold        float64    `json:"threshold"`         // 偏差百分比阈值，超过即生成问题
	Weight           float64    `json:"weight"`            // 优先级权重
	QuestionTemplate string     `json:"question_template"` // 含 {current_value} / {budgeted_value} 占位符
}

// Checklist 指标检查清单（启动时加载，之后只读）
type Checklist struct {
	Version string             `json:"version,omitempty"`
	Metrics []MetricDefinition `json:"metrics"`
}

// Placeholder tokens used by QuestionTemplate.
const (
	PlaceholderCurrentValue  = "{current_value}"
	PlaceholderBudgetedValue = "{budgeted_value}"
)

// ResolvedValue 指标的实际值与预算值（缺失时对应 Has* 为 false）
type ResolvedValue struct {
	Actual    float64 `json:"actual"`
	Budget    float64 `json:"budget"`
	HasActual bool    `json:"hasActual"`
	HasBudget bool    `json:"hasBudget"`
}

// Complete 实际值与预算值是否都存在
func (v ResolvedValue) Complete() bool {
	return v.HasActual && v.HasBudget
}
