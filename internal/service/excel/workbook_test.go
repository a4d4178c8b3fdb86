package excel_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matcapl/portco-board-assistant/internal/model"
	"github.com/matcapl/portco-board-assistant/internal/service/excel"
)

func TestWorkbookLookup(t *testing.T) {
	wb := openWorkbook(t, map[string]map[string]interface{}{
		"P&L": {
			"B2": 120,
			"C2": 100.5,
			"B3": "120",
			"B4": true,
			"B5": " ",
			"B6": -42,
			"B7": time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	})

	tests := []struct {
		name   string
		sheet  string
		cell   string
		want   float64
		wantOK bool
	}{
		{"整数", "P&L", "B2", 120, true},
		{"小数", "P&L", "C2", 100.5, true},
		{"负数", "P&L", "B6", -42, true},
		{"文本数字不算数值", "P&L", "B3", 0, false},
		{"布尔值", "P&L", "B4", 0, false},
		{"空白文本", "P&L", "B5", 0, false},
		{"日期", "P&L", "B7", 0, false},
		{"空单元格", "P&L", "Z99", 0, false},
		{"工作表不存在", "Balance Sheet", "B2", 0, false},
		{"非法坐标", "P&L", "??", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := wb.Lookup(tt.sheet, tt.cell)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q, %q) ok=%v, want %v", tt.sheet, tt.cell, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("Lookup(%q, %q)=%v, want %v", tt.sheet, tt.cell, got, tt.want)
			}
		})
	}
}

func TestWorkbookLookupUncalculatedFormula(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellFormula("Sheet1", "A1", "B1*2"); err != nil {
		t.Fatalf("SetCellFormula failed: %v", err)
	}
	wb := reopen(t, f)

	if _, ok := wb.Lookup("Sheet1", "A1"); ok {
		t.Fatalf("formula without cached value should be absent")
	}
}

func TestWorkbookLookupNumberFormats(t *testing.T) {
	f := excelize.NewFile()
	customDate := "yyyy-mm-dd"
	elapsed := "[h]:mm"
	money := `#,##0.00 "GBP";[Red]-#,##0.00`
	styles := map[string]*excelize.Style{
		"A1": {NumFmt: 14},
		"A2": {CustomNumFmt: &customDate},
		"A3": {CustomNumFmt: &elapsed},
		"A4": {NumFmt: 4},
		"A5": {CustomNumFmt: &money},
		"A6": {NumFmt: 10},
	}
	for cell, style := range styles {
		if err := f.SetCellValue("Sheet1", cell, 45382); err != nil {
			t.Fatalf("SetCellValue %s failed: %v", cell, err)
		}
		id, err := f.NewStyle(style)
		if err != nil {
			t.Fatalf("NewStyle %s failed: %v", cell, err)
		}
		if err := f.SetCellStyle("Sheet1", cell, cell, id); err != nil {
			t.Fatalf("SetCellStyle %s failed: %v", cell, err)
		}
	}
	wb := reopen(t, f)

	tests := []struct {
		name   string
		cell   string
		wantOK bool
	}{
		{"内置日期格式", "A1", false},
		{"自定义日期格式", "A2", false},
		{"经过时间格式", "A3", false},
		{"千分位", "A4", true},
		{"带引号文本与颜色的金额格式", "A5", true},
		{"百分比", "A6", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := wb.Lookup("Sheet1", tt.cell)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok=%v, want %v (value=%v)", tt.cell, ok, tt.wantOK, got)
			}
			if ok && got != 45382 {
				t.Fatalf("Lookup(%q)=%v, want 45382", tt.cell, got)
			}
		})
	}
}

func TestWorkbookMetadata(t *testing.T) {
	wb := openWorkbook(t, map[string]map[string]interface{}{
		"P&L":  {"A1": 1},
		"KPIs": {"A1": 2},
	})

	if wb.FileID() == "" {
		t.Fatalf("FileID should not be empty")
	}
	if !wb.HasSheet("KPIs") || wb.HasSheet("Missing") {
		t.Fatalf("HasSheet mismatch, sheets=%v", wb.SheetNames())
	}
	if len(wb.SheetNames()) != 2 {
		t.Fatalf("SheetNames=%v, want 2 sheets", wb.SheetNames())
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := excel.Open(bytes.NewReader([]byte("not a spreadsheet"))); err == nil {
		t.Fatalf("expected error for non-xlsx input")
	}
}

func TestResolveChecklist(t *testing.T) {
	wb := openWorkbook(t, map[string]map[string]interface{}{
		"P&L": {"B2": 48, "C2": 50, "B3": 10},
	})
	checklist := &model.Checklist{
		Metrics: []model.MetricDefinition{
			{Name: "Margin", DataSource: model.DataSource{Sheet: "P&L", Actual: model.CellRef{Cell: "B2"}, Budget: model.CellRef{Cell: "C2"}}},
			{Name: "Opex", DataSource: model.DataSource{Sheet: "P&L", Actual: model.CellRef{Cell: "B3"}, Budget: model.CellRef{Cell: "C3"}}},
			{Name: "Cash", DataSource: model.DataSource{Sheet: "Balance", Actual: model.CellRef{Cell: "B2"}, Budget: model.CellRef{Cell: "C2"}}},
			{Name: "Debt", DataSource: model.DataSource{Sheet: "Balance", Actual: model.CellRef{Cell: "B3"}, Budget: model.CellRef{Cell: "C3"}}},
		},
	}

	reports := excel.ResolveChecklist(checklist, wb)
	if len(reports) != 4 {
		t.Fatalf("expected 4 reports, got %d", len(reports))
	}
	if !reports[0].Value.Complete() || reports[0].Value.Actual != 48 || reports[0].Value.Budget != 50 {
		t.Fatalf("Margin report=%+v", reports[0])
	}
	if !reports[1].Value.HasActual || reports[1].Value.HasBudget {
		t.Fatalf("Opex report=%+v, want actual only", reports[1])
	}
	if reports[2].SheetFound {
		t.Fatalf("Cash sheet should be missing")
	}

	missing := excel.MissingSheets(reports)
	if len(missing) != 1 || missing[0] != "Balance" {
		t.Fatalf("MissingSheets=%v, want [Balance]", missing)
	}
}

// openWorkbook 构建工作簿并经 xlsx 字节往返后重新加载
func openWorkbook(t *testing.T, sheets map[string]map[string]interface{}) *excel.Workbook {
	t.Helper()

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	for name, cells := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet %s failed: %v", name, err)
		}
		for cell, v := range cells {
			if err := f.SetCellValue(name, cell, v); err != nil {
				t.Fatalf("SetCellValue %s!%s failed: %v", name, cell, err)
			}
		}
	}
	if _, ok := sheets[defaultSheet]; !ok && defaultSheet != "" {
		_ = f.DeleteSheet(defaultSheet)
	}

	return reopen(t, f)
}

func reopen(t *testing.T, f *excelize.File) *excel.Workbook {
	t.Helper()

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	wb, err := excel.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}
