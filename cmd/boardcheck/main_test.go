package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/matcapl/portco-board-assistant/internal/model"
)

func writeChecklist(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "checklist.json")
	body := `{"metrics": [
  {"name": "CostPerUnit", "data_source": {"sheet": "Ops", "actual": {"cell": "B2"}, "budget": {"cell": "C2"}},
   "threshold": 10, "weight": 2, "question_template": "CPU {current_value} vs {budgeted_value}"},
  {"name": "Margin", "data_source": {"sheet": "Ops", "actual": {"cell": "B3"}, "budget": {"cell": "C3"}},
   "threshold": 10, "weight": 1, "question_template": "unused"}
]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write checklist: %v", err)
	}
	return path
}

func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Ops"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	for cell, v := range map[string]int{"B2": 120, "C2": 100, "B3": 48, "C3": 50} {
		if err := f.SetCellValue("Ops", cell, v); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	path := filepath.Join(dir, "pack.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	cl := writeChecklist(t, dir)
	wb := writeWorkbook(t, dir)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	if err := app.Run([]string{"boardcheck", "--checklist", cl, "analyze", wb}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var resp model.AnalyzeResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %q (%v)", out.String(), err)
	}
	if len(resp.Results) != 2 || resp.Results[0].Text != "CPU 120 vs 100" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	if len(resp.Files) != 1 || resp.Files[0] != "pack.xlsx" {
		t.Fatalf("unexpected files: %v", resp.Files)
	}
}

func TestAnalyzeCommandRequiresFile(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}

	if err := app.Run([]string{"boardcheck", "analyze"}); err == nil {
		t.Fatalf("expected error without a workbook path")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	cl := writeChecklist(t, dir)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	if err := app.Run([]string{"boardcheck", "--checklist", cl, "validate"}); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got := out.String(); got != "checklist ok: 2 metrics\n" {
		t.Fatalf("output=%q", got)
	}
}

func TestAnalyzeCommandWritesOutFile(t *testing.T) {
	dir := t.TempDir()
	cl := writeChecklist(t, dir)
	wb := writeWorkbook(t, dir)
	out := filepath.Join(dir, "report", "result.json")

	app := newApp()
	app.Writer = &bytes.Buffer{}
	if err := app.Run([]string{"boardcheck", "-c", cl, "analyze", "--out", out, "--file", wb}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read out file: %v", err)
	}
	var resp model.AnalyzeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("out file is not JSON: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
}
