package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"eod-reconciliation-backend/internal/config"
	"eod-reconciliation-backend/internal/logger"
	"eod-reconciliation-backend/internal/report"
	service "eod-reconciliation-backend/internal/services/reconciliation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(config.Load(), os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "eodrecon",
		Usage:     "reconcile EOD summary reports against receipt files in a POS backup tree",
		ArgsUsage: "[ROOT]",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "report", Aliases: []string{"o"}, Value: cfg.ReportFile, Usage: "text report output path"},
			&cli.StringFlag{Name: "xlsx", Usage: "also write an xlsx workbook to this path"},
			&cli.StringFlag{Name: "tolerance", Value: cfg.Tolerance.String(), Usage: "largest absolute difference that still counts as a match"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Value: cfg.Workers, Usage: "files parsed in parallel"},
			&cli.StringFlag{Name: "marker", Value: cfg.MarkerToken, Usage: "token in terminal folder names"},
			&cli.StringFlag{Name: "receipts-dir", Value: cfg.ReceiptsSegment, Usage: "receipts folder below a terminal"},
			&cli.StringFlag{Name: "eod-dir", Value: cfg.ReportsSegment, Usage: "EOD folder below a terminal"},
			&cli.StringFlag{Name: "ext", Value: cfg.FileExtension, Usage: "record file extension"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print the report to stdout"},
		},
		Action: func(c *cli.Context) error {
			return run(c, cfg)
		},
	}
}

func run(c *cli.Context, cfg *config.Config) error {
	if err := applyFlags(c, cfg); err != nil {
		return err
	}
	log := logger.Init(cfg.LogLevel, false, c.App.ErrWriter)

	root := strings.TrimSpace(c.Args().First())
	if root == "" {
		var err error
		if root, err = promptRoot(c.App.Reader, c.App.Writer); err != nil {
			return err
		}
	}

	svc := service.NewFromConfig(cfg, log)
	res, err := svc.Run(c.Context, root, func(done, total int) {
		if done%500 == 0 || done == total {
			log.WithFields(logrus.Fields{"done": done, "total": total}).Debug("Parsing files")
		}
	})
	if err != nil {
		return err
	}

	text := report.RenderText(res)
	if !c.Bool("quiet") {
		fmt.Fprint(c.App.Writer, text)
	}
	if err := report.SaveText(cfg.ReportFile, res); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Report written to %s\n", cfg.ReportFile)

	if path := c.String("xlsx"); path != "" {
		if err := report.SaveExcel(path, res); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Workbook written to %s\n", path)
	}
	return nil
}

// applyFlags lets command-line flags override environment configuration.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	cfg.ReportFile = c.String("report")
	cfg.Workers = c.Int("workers")
	cfg.MarkerToken = c.String("marker")
	cfg.ReceiptsSegment = c.String("receipts-dir")
	cfg.ReportsSegment = c.String("eod-dir")
	cfg.FileExtension = c.String("ext")
	cfg.LogLevel = c.String("log-level")

	tol, err := decimal.NewFromString(strings.TrimSpace(c.String("tolerance")))
	if err != nil {
		return fmt.Errorf("invalid --tolerance %q: %w", c.String("tolerance"), err)
	}
	if tol.IsNegative() {
		return fmt.Errorf("invalid --tolerance %q: must not be negative", c.String("tolerance"))
	}
	cfg.Tolerance = tol

	if cfg.Workers < 1 {
		return fmt.Errorf("invalid --workers %d: must be at least 1", cfg.Workers)
	}
	if cfg.MarkerToken == "" {
		return errors.New("--marker must not be empty")
	}
	return nil
}

func promptRoot(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the path to the backup folder: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read root path: %w", err)
	}
	root := strings.Trim(strings.TrimSpace(line), `"'`)
	if root == "" {
		return "", errors.New("no root path given")
	}
	return root, nil
}
