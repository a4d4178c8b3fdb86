package evaluator

import (
	"sort"

	"github.com/matcapl/portco-board-assistant/internal/model"
)

// Rank 按优先级分数降序排列；分数相同保持原有顺序
func Rank(records []model.ResultRecord) []model.ResultRecord {
	out := make([]model.ResultRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	return out
}

// CountByType 统计各类型结果数量
func CountByType(records []model.ResultRecord) map[model.ResultType]int {
	counts := map[model.ResultType]int{
		model.ResultTypeObservation: 0,
		model.ResultTypeQuestion:    0,
	}
	for _, r := range records {
		counts[r.Type]++
	}
	return counts
}
