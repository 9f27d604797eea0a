package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/internal/repository"
	"github.com/noah-isme/staffplan-api/internal/snapshot"
	"github.com/noah-isme/staffplan-api/internal/timeline"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	"github.com/noah-isme/staffplan-api/pkg/config"
	"github.com/noah-isme/staffplan-api/pkg/database"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/logger"
)

func bindFilterFlags(cmd *cobra.Command, q *dto.PlanningFilterQuery) {
	cmd.Flags().StringSliceVar(&q.Profiles, "profile", nil, "profiles to include")
	cmd.Flags().StringSliceVar(&q.Statuses, "status", nil, "statuses to include: active|inactive (default active)")
	cmd.Flags().StringSliceVar(&q.ContractTypes, "contract", nil, "contract types to include")
	cmd.Flags().StringVar(&q.Start, "start", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.End, "end", "", "range end (YYYY-MM-DD)")
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var personID, start, end, exclude string
	var fraction, percent float64

	cmd := &cobra.Command{
		Use:   "check --person <id> --start <day> --end <day> --allocation <fraction>",
		Short: "Check whether a candidate assignment overallocates a person",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startDay, err := calendarday.Parse(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endDay, err := calendarday.Parse(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			req := dto.CheckOverallocationRequest{
				PersonID:            personID,
				StartDate:           startDay,
				EndDate:             endDay,
				ExcludeAssignmentID: exclude,
			}
			if cmd.Flags().Changed("allocation") {
				req.Allocation = &fraction
			}
			if cmd.Flags().Changed("percent") {
				req.AllocationPercent = &percent
			}
			return withApp(opts, func(a *app) error {
				resp, err := a.allocations.Check(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&personID, "person", "", "person id")
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&fraction, "allocation", 0, "allocation as a fraction of one FTE")
	cmd.Flags().Float64Var(&percent, "percent", 0, "allocation as a percentage")
	cmd.Flags().StringVar(&exclude, "exclude", "", "assignment id being edited")
	cmd.MarkFlagsMutuallyExclusive("allocation", "percent")
	return cmd
}

func newTotalsCmd(opts *rootOptions) *cobra.Command {
	var personID string
	var query dto.DailyTotalsQuery

	cmd := &cobra.Command{
		Use:   "totals --person <id> --start <day> --end <day>",
		Short: "Print a person's daily allocation totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				resp, err := a.allocations.DailyTotals(cmd.Context(), personID, query)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&personID, "person", "", "person id")
	cmd.Flags().StringVar(&query.Start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&query.End, "end", "", "last day (YYYY-MM-DD)")
	return cmd
}

func newBreakdownCmd(opts *rootOptions) *cobra.Command {
	var personID, day string

	cmd := &cobra.Command{
		Use:   "breakdown --person <id> --day <day>",
		Short: "Explain a person's total on one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				resp, err := a.allocations.Breakdown(cmd.Context(), personID, day)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&personID, "person", "", "person id")
	cmd.Flags().StringVar(&day, "day", "", "day (YYYY-MM-DD)")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var query dto.ExportQuery
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List people over the allocation tolerance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := strings.ToLower(query.Format)
			return withApp(opts, func(a *app) error {
				if format == "" || format == "json" {
					report, _, err := a.allocations.OverallocationReport(cmd.Context(), query.OverallocationReportQuery)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), report)
				}

				q := query
				q.Format = format
				result, err := a.exports.Overallocation(cmd.Context(), q)
				if err != nil {
					return err
				}
				if outPath == "" {
					_, err = cmd.OutOrStdout().Write(result.Body)
					return err
				}
				if err := os.WriteFile(outPath, result.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				a.logger.Info("report written",
					zap.String("path", outPath),
					zap.String("content_type", result.ContentType),
					zap.Int("rows", result.Rows),
				)
				return nil
			})
		},
	}
	bindFilterFlags(cmd, &query.PlanningFilterQuery)
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number (json only)")
	cmd.Flags().IntVar(&query.PageSize, "page-size", 50, "page size (json only)")
	cmd.Flags().StringVar(&query.Format, "format", "json", "output format: json|csv|pdf")
	cmd.Flags().StringVar(&outPath, "out", "", "write csv or pdf output to this file")
	return cmd
}

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	var query dto.TimelineQuery

	cmd := &cobra.Command{
		Use:   "layout --window-start <day> --window-end <day>",
		Short: "Lay out the timeline grid for a window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				resp, _, err := a.timeline.LayoutForFilter(cmd.Context(), query)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	bindFilterFlags(cmd, &query.PlanningFilterQuery)
	cmd.Flags().BoolVar(&query.OverallocatedOnly, "overallocated-only", false, "only rows with an overallocated day")
	cmd.Flags().StringVar(&query.WindowStart, "window-start", "", "first materialized day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&query.WindowEnd, "window-end", "", "last materialized day (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&query.DayWidthPx, "day-width", 0, "pixels per day")
	cmd.Flags().Float64Var(&query.ScrollLeftPx, "scroll-left", 0, "horizontal scroll offset in pixels")
	cmd.Flags().Float64Var(&query.VisibleWidthPx, "visible-width", 1280, "visible grid width in pixels")
	cmd.Flags().Float64Var(&query.SidebarWidthPx, "sidebar-width", 0, "sidebar width in pixels")
	return cmd
}

func newSnapCmd(opts *rootOptions) *cobra.Command {
	var personID, assignmentID, mode string
	var deltaPx, dayWidth float64

	cmd := &cobra.Command{
		Use:   "snap --person <id> --assignment <id> --mode <mode> --delta-px <px>",
		Short: "Preview a drag or resize snapped to whole days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				existing, err := a.assignments.ListByPerson(cmd.Context(), personID)
				if err != nil {
					return err
				}
				target, ok := findAssignment(existing, assignmentID)
				if !ok {
					return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assignment %s not found for person %s", assignmentID, personID))
				}
				resp, err := a.timeline.Snap(cmd.Context(), dto.SnapRequest{
					Assignment: target,
					Mode:       timeline.DragMode(mode),
					DeltaPx:    deltaPx,
					DayWidthPx: dayWidth,
					Existing:   existing,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&personID, "person", "", "person id")
	cmd.Flags().StringVar(&assignmentID, "assignment", "", "assignment id")
	cmd.Flags().StringVar(&mode, "mode", string(timeline.DragMove), "drag mode: move|resize_start|resize_end")
	cmd.Flags().Float64Var(&deltaPx, "delta-px", 0, "pointer movement in pixels")
	cmd.Flags().Float64Var(&dayWidth, "day-width", 40, "pixels per day")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import --snapshot <file.yaml> --db <file.sqlite>",
		Short: "Load a YAML snapshot into a SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.snapshotPath == "" || opts.dbPath == "" {
				return errors.New("import needs both --snapshot and --db")
			}
			log, err := logger.NewCLI(opts.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			snap, err := snapshot.Load(opts.snapshotPath)
			if err != nil {
				return err
			}
			db, err := database.NewSQLite(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: opts.dbPath})
			if err != nil {
				return fmt.Errorf("open %s: %w", opts.dbPath, err)
			}
			defer db.Close()

			if err := importSnapshot(cmd.Context(), db, snap); err != nil {
				return err
			}
			log.Info("snapshot imported",
				zap.String("snapshot", opts.snapshotPath),
				zap.String("db", opts.dbPath),
			)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d people, %d projects, %d assignments into %s\n",
				len(snap.People), len(snap.Projects), len(snap.Assignments), opts.dbPath)
			return nil
		},
	}
}

func importSnapshot(ctx context.Context, db *sqlx.DB, snap *snapshot.Snapshot) error {
	if err := repository.EnsureSchema(ctx, db); err != nil {
		return err
	}
	return repository.Import(ctx, db, snap.People, snap.Projects, snap.Assignments)
}

func findAssignment(assignments []models.Assignment, id string) (models.Assignment, bool) {
	for _, a := range assignments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Assignment{}, false
}
