package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/matcapl/portco-board-assistant/internal/checklist"
	"github.com/matcapl/portco-board-assistant/internal/logger"
	"github.com/matcapl/portco-board-assistant/internal/model"
	"github.com/matcapl/portco-board-assistant/internal/service/evaluator"
	"github.com/matcapl/portco-board-assistant/internal/service/excel"
	"github.com/matcapl/portco-board-assistant/internal/util"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "boardcheck",
		Usage: "Evaluate a board pack spreadsheet against a metric checklist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "checklist",
				Aliases: []string{"c"},
				Usage:   "checklist JSON file (defaults to the embedded checklist)",
				EnvVars: []string{"PBA_CHECKLIST_PATH"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			logger.InitWithWriter(os.Stderr, c.String("log-level"), "console")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Print ranked observations and questions for a workbook",
				ArgsUsage: "<file.xlsx>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "workbook to analyze"},
					&cli.BoolFlag{Name: "pretty", Usage: "indent JSON output"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the JSON result to a file instead of stdout"},
				},
				Action: analyzeAction,
			},
			{
				Name:   "validate",
				Usage:  "Validate the checklist and exit non-zero on errors",
				Action: validateAction,
			},
		},
	}
}

func analyzeAction(c *cli.Context) error {
	path := c.String("file")
	if path == "" {
		path = c.Args().First()
	}
	if path == "" {
		return errors.New("a workbook path is required")
	}

	cl, err := checklist.Load(c.String("checklist"))
	if err != nil {
		return err
	}

	wb, err := excel.OpenFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()

	reports := excel.ResolveChecklist(cl, wb)
	for _, sheet := range excel.MissingSheets(reports) {
		log.Warn().Str("sheet", sheet).Msg("sheet not found")
	}
	for _, r := range reports {
		if r.SheetFound && !r.Value.Complete() {
			log.Warn().Str("metric", r.Metric).Msg("metric skipped: missing actual or budget")
		}
	}

	resp := model.AnalyzeResponse{
		Results: evaluator.Analyze(cl, wb),
		Files:   []string{filepath.Base(path)},
	}

	if out := c.String("out"); out != "" {
		return util.WriteJSONAtomic(out, resp)
	}

	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}

func validateAction(c *cli.Context) error {
	cl, err := checklist.Load(c.String("checklist"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	fmt.Fprintf(c.App.Writer, "checklist ok: %d metrics\n", len(cl.Metrics))
	return nil
}
