package evaluator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matcapl/portco-board-assistant/internal/model"
)

// Resolver 单元格取值能力：返回数值，或在工作表/单元格缺失、值非数字时返回 false
type Resolver interface {
	Lookup(sheet, cell string) (float64, bool)
}

// ResolverFunc 函数形式的 Resolver
type ResolverFunc func(sheet, cell string) (float64, bool)

// Lookup 实现 Resolver
func (f ResolverFunc) Lookup(sheet, cell string) (float64, bool) {
	return f(sheet, cell)
}

// DegenerateScore 预算为 0 且实际值非 0 时的优先级分数
const DegenerateScore = math.MaxFloat64

var hundred = decimal.NewFromInt(100)

// Evaluation 单个指标的评估明细
type Evaluation struct {
	Metric     string
	Actual     float64
	Budget     float64
	Deviation  float64 // 百分比；预算为 0 且实际值非 0 时为 +Inf
	Degenerate bool
	Record     model.ResultRecord
}

// Evaluate 按检查清单顺序评估所有指标，缺数据的指标直接跳过
func Evaluate(checklist *model.Checklist, resolver Resolver) []model.ResultRecord {
	evals := EvaluateDetailed(checklist, resolver)
	records := make([]model.ResultRecord, 0, len(evals))
	for _, e := range evals {
		records = append(records, e.Record)
	}
	return records
}

// EvaluateDetailed 同 Evaluate，但保留每个指标的计算明细
func EvaluateDetailed(checklist *model.Checklist, resolver Resolver) []Evaluation {
	if checklist == nil || resolver == nil {
		return []Evaluation{}
	}

	evals := make([]Evaluation, 0, len(checklist.Metrics))
	for _, m := range checklist.Metrics {
		v := Resolve(m, resolver)
		if !v.Complete() {
			continue
		}
		evals = append(evals, EvaluateMetric(m, v.Actual, v.Budget))
	}
	return evals
}

// Analyze 评估并按优先级排序
func Analyze(checklist *model.Checklist, resolver Resolver) []model.ResultRecord {
	return Rank(Evaluate(checklist, resolver))
}

// Resolve 读取指标的实际值与预算值；非有限数视为缺失
func Resolve(m model.MetricDefinition, resolver Resolver) model.ResolvedValue {
	var v model.ResolvedValue
	v.Actual, v.HasActual = lookupFinite(resolver, m.DataSource.Sheet, m.DataSource.Actual.Cell)
	v.Budget, v.HasBudget = lookupFinite(resolver, m.DataSource.Sheet, m.DataSource.Budget.Cell)
	return v
}

func lookupFinite(resolver Resolver, sheet, cell string) (float64, bool) {
	f, ok := resolver.Lookup(sheet, cell)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// EvaluateMetric 计算单个指标的偏差、优先级并生成文本
func EvaluateMetric(m model.MetricDefinition, actual, budget float64) Evaluation {
	e := Evaluation{
		Metric: m.Name,
		Actual: actual,
		Budget: budget,
	}

	if budget == 0 {
		if actual == 0 {
			e.Record = model.ResultRecord{
				Type:          model.ResultTypeObservation,
				Text:          observationText(m.Name, actual, budget, "0.0"),
				PriorityScore: 0,
			}
			return e
		}
		e.Deviation = math.Inf(1)
		e.Degenerate = true
		e.Record = model.ResultRecord{
			Type:          model.ResultTypeQuestion,
			Text:          questionText(m.QuestionTemplate, actual, budget),
			PriorityScore: DegenerateScore,
		}
		return e
	}

	a := decimal.NewFromFloat(actual)
	b := decimal.NewFromFloat(budget)
	threshold := finiteDecimal(m.Threshold)

	deviation := a.Sub(b).Abs().Div(b).Mul(hundred)
	e.Deviation = deviation.InexactFloat64()

	if threshold.IsPositive() {
		score := deviation.Div(threshold).Mul(finiteDecimal(m.Weight))
		e.Record.PriorityScore = math.Min(score.InexactFloat64(), DegenerateScore)
	} else if deviation.IsPositive() {
		// 未经校验的阈值（<= 0）：任何正偏差都视为最高优先级
		e.Record.PriorityScore = DegenerateScore
	}

	if deviation.GreaterThan(threshold) {
		e.Record.Type = model.ResultTypeQuestion
		e.Record.Text = questionText(m.QuestionTemplate, actual, budget)
	} else {
		e.Record.Type = model.ResultTypeObservation
		e.Record.Text = observationText(m.Name, actual, budget, deviation.StringFixed(1))
	}
	return e
}

// finiteDecimal NaN/Inf 记为 0
func finiteDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// questionText 只替换每个占位符的第一次出现
func questionText(template string, actual, budget float64) string {
	text := strings.Replace(template, model.PlaceholderCurrentValue, FormatNumber(actual), 1)
	return strings.Replace(text, model.PlaceholderBudgetedValue, FormatNumber(budget), 1)
}

func observationText(name string, actual, budget float64, deviation string) string {
	return "The " + name + " is " + FormatNumber(actual) +
		", within " + deviation + "% of the budgeted " + FormatNumber(budget) + "."
}
