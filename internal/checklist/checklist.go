package checklist

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matcapl/portco-board-assistant/internal/model"
)

//go:embed checklist.json
var defaultChecklist []byte

// ValidationError 检查清单校验失败，列出全部问题
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checklist %s: %s", e.Source, strings.Join(e.Problems, "; "))
}

// Default 内置检查清单
func Default() (*model.Checklist, error) {
	return Parse(defaultChecklist, "embedded")
}

// Load 从 JSON 文件加载检查清单；path 为空时使用内置清单
func Load(path string) (*model.Checklist, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist: %w", err)
	}
	return Parse(data, path)
}

// Parse 解析并校验检查清单
func Parse(data []byte, source string) (*model.Checklist, error) {
	var cl model.Checklist
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cl); err != nil {
		return nil, fmt.Errorf("failed to decode checklist %s: %w", source, err)
	}
	if err := Validate(&cl, source); err != nil {
		return nil, err
	}
	return &cl, nil
}

// Validate 校验指标定义的必填字段
func Validate(cl *model.Checklist, source string) error {
	if cl == nil {
		return &ValidationError{Source: source, Problems: []string{"checklist is empty"}}
	}

	problems := make([]string, 0)
	if len(cl.Metrics) == 0 {
		problems = append(problems, "no metrics defined")
	}

	seen := make(map[string]int, len(cl.Metrics))
	for i, m := range cl.Metrics {
		label := fmt.Sprintf("metrics[%d]", i)
		name := strings.TrimSpace(m.Name)
		if name == "" {
			problems = append(problems, label+": name is required")
		} else {
			label = fmt.Sprintf("metrics[%d] %q", i, m.Name)
			if prev, dup := seen[name]; dup {
				problems = append(problems, fmt.Sprintf("%s: duplicate name (first defined at metrics[%d])", label, prev))
			} else {
				seen[name] = i
			}
		}

		if strings.TrimSpace(m.DataSource.Sheet) == "" {
			problems = append(problems, label+": data_source.sheet is required")
		}
		if err := checkCell(m.DataSource.Actual.Cell); err != nil {
			problems = append(problems, fmt.Sprintf("%s: data_source.actual.cell: %v", label, err))
		}
		if err := checkCell(m.DataSource.Budget.Cell); err != nil {
			problems = append(problems, fmt.Sprintf("%s: data_source.budget.cell: %v", label, err))
		}
		if !positiveFinite(m.Threshold) {
			problems = append(problems, fmt.Sprintf("%s: threshold must be a positive number, got %v", label, m.Threshold))
		}
		if !positiveFinite(m.Weight) {
			problems = append(problems, fmt.Sprintf("%s: weight must be a positive number, got %v", label, m.Weight))
		}
		if strings.TrimSpace(m.QuestionTemplate) == "" {
			problems = append(problems, label+": question_template is required")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Source: source, Problems: problems}
	}
	return nil
}

func checkCell(cell string) error {
	if cell == "" {
		return errors.New("required")
	}
	if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
		return err
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
