package model

// ResultType 结果类型
type ResultType string

const (
	ResultTypeObservation ResultType = "observation" // 偏差在阈值内
	ResultTypeQuestion    ResultType = "question"    // 偏差超过阈值
)

// ResultRecord 单个指标的评估结果
type ResultRecord struct {
	Type          ResultType `json:"type"`
	Text          string     `json:"text"`
	PriorityScore float64    `json:"priorityScore"`
}

// AnalyzeResponse 分析接口响应
type AnalyzeResponse struct {
	Results []ResultRecord `json:"results"`
	Files   []string       `json:"files"`
}
