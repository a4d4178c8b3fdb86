package excel

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/matcapl/portco-board-assistant/internal/model"
	"github.com/matcapl/portco-board-assistant/internal/service/evaluator"
)

// Workbook 已加载的工作簿，按 (sheet, cell) 读取数值
type Workbook struct {
	file   *excelize.File
	fileID string
	sheets map[string]struct{}
}

// Open 从 reader 加载工作簿
func Open(reader io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	return newWorkbook(file), nil
}

// OpenFile 从磁盘加载工作簿
func OpenFile(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	return newWorkbook(file), nil
}

func newWorkbook(file *excelize.File) *Workbook {
	wb := &Workbook{
		file:   file,
		fileID: uuid.New().String(),
		sheets: make(map[string]struct{}),
	}
	for _, name := range file.GetSheetList() {
		wb.sheets[name] = struct{}{}
	}
	return wb
}

// FileID 获取文件ID
func (w *Workbook) FileID() string {
	return w.fileID
}

// SheetNames 工作表列表（按工作簿顺序）
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet 工作表是否存在
func (w *Workbook) HasSheet(name string) bool {
	_, ok := w.sheets[name]
	return ok
}

// Lookup 实现 evaluator.Resolver。
// 工作表不存在、单元格为空、或单元格不是数值类型（字符串/布尔/错误/日期）时返回 false
func (w *Workbook) Lookup(sheet, cell string) (float64, bool) {
	if !w.HasSheet(sheet) {
		return 0, false
	}

	cellType, err := w.file.GetCellType(sheet, cell)
	if err != nil {
		return 0, false
	}
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	default:
		return 0, false
	}

	raw, err := w.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	// 日期以序列号存储，只能通过单元格格式区分
	if w.isDateCell(sheet, cell) {
		return 0, false
	}
	return f, true
}

// isDateCell 单元格是否使用日期/时间数字格式
func (w *Workbook) isDateCell(sheet, cell string) bool {
	styleID, err := w.file.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := w.file.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	return isDateNumFmt(style.NumFmt, style.CustomNumFmt)
}

// Close 释放工作簿资源
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

var _ evaluator.Resolver = (*Workbook)(nil)

// MetricReport 单个指标的取值情况（用于日志与审计）
type MetricReport struct {
	Metric     string              `json:"metric"`
	Sheet      string              `json:"sheet"`
	SheetFound bool                `json:"sheetFound"`
	Value      model.ResolvedValue `json:"value"`
}

// ResolveChecklist 逐个指标读取实际值与预算值
func ResolveChecklist(checklist *model.Checklist, wb *Workbook) []MetricReport {
	if checklist == nil || wb == nil {
		return []MetricReport{}
	}
	reports := make([]MetricReport, 0, len(checklist.Metrics))
	for _, m := range checklist.Metrics {
		reports = append(reports, MetricReport{
			Metric:     m.Name,
			Sheet:      m.DataSource.Sheet,
			SheetFound: wb.HasSheet(m.DataSource.Sheet),
			Value:      evaluator.Resolve(m, wb),
		})
	}
	return reports
}

// MissingSheets 检查清单引用但工作簿中不存在的工作表（去重，按清单顺序）
func MissingSheets(reports []MetricReport) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range reports {
		if r.SheetFound {
			continue
		}
		if _, ok := seen[r.Sheet]; ok {
			continue
		}
		seen[r.Sheet] = struct{}{}
		out = append(out, r.Sheet)
	}
	return out
}
