package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/internal/repository"
	"github.com/noah-isme/staffplan-api/internal/service"
	"github.com/noah-isme/staffplan-api/internal/snapshot"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	"github.com/noah-isme/staffplan-api/pkg/config"
	"github.com/noah-isme/staffplan-api/pkg/database"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

type rootOptions struct {
	snapshotPath string
	dbPath       string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "staffplan",
		Short:         "Offline staffing allocation and timeline tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.snapshotPath, "snapshot", "", "YAML planning snapshot")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite planning database")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newTotalsCmd(opts))
	root.AddCommand(newBreakdownCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newSnapCmd(opts))
	root.AddCommand(newImportCmd(opts))
	return root
}

// app holds the services a subcommand runs against. The readers are either
// the in-memory snapshot store or the SQL repositories.
type app struct {
	allocations *service.AllocationService
	timeline    *service.TimelineService
	exports     *service.ExportService
	assignments planningAssignments
	logger      *zap.Logger
	close       func() error
}

type planningPeople interface {
	List(ctx context.Context, filter models.PlanningFilter) ([]models.Person, error)
	FindByID(ctx context.Context, id string) (*models.Person, error)
}

type planningProjects interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Project, error)
}

type planningAssignments interface {
	ListByPerson(ctx context.Context, personID string) ([]models.Assignment, error)
	ListByPeople(ctx context.Context, personIDs []string, window calendarday.Range) ([]models.Assignment, error)
}

func loadApp(opts *rootOptions) (*app, error) {
	log, err := logger.NewCLI(opts.logLevel)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.snapshotPath != "" && opts.dbPath != "":
		return nil, errors.New("--snapshot and --db are mutually exclusive")
	case opts.snapshotPath != "":
		snap, err := snapshot.Load(opts.snapshotPath)
		if err != nil {
			return nil, err
		}
		store := snapshot.NewStore(snap)
		log.Debug("snapshot loaded",
			zap.String("path", opts.snapshotPath),
			zap.Int("people", len(snap.People)),
			zap.Int("assignments", len(snap.Assignments)),
		)
		return newApp(store, store, store, log, func() error {
			_ = log.Sync()
			return nil
		}), nil
	case opts.dbPath != "":
		db, err := database.NewSQLite(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: opts.dbPath})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", opts.dbPath, err)
		}
		closeFn := func() error {
			_ = log.Sync()
			return db.Close()
		}
		return newApp(
			repository.NewPersonRepository(db),
			repository.NewProjectRepository(db),
			repository.NewAssignmentRepository(db),
			log,
			closeFn,
		), nil
	default:
		return nil, errors.New("one of --snapshot or --db is required")
	}
}

func newApp(people planningPeople, projects planningProjects, assignments planningAssignments, log *zap.Logger, closeFn func() error) *app {
	validate := service.NewValidator()
	allocations := service.NewAllocationService(service.AllocationServiceParams{
		People:      people,
		Assignments: assignments,
		Validator:   validate,
		Logger:      log,
	})
	return &app{
		allocations: allocations,
		timeline: service.NewTimelineService(service.TimelineServiceParams{
			People:      people,
			Projects:    projects,
			Assignments: assignments,
			Validator:   validate,
			Logger:      log,
		}),
		exports:     service.NewExportService(allocations, service.ExportConfig{}, log),
		assignments: assignments,
		logger:      log,
		close:       closeFn,
	}
}

// withApp loads the app, runs fn and releases the backing store.
func withApp(opts *rootOptions, fn func(*app) error) (err error) {
	a, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe flattens API errors into one readable line with field details.
func describe(err error) string {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	msg := fmt.Sprintf("%s: %s", appErr.Code, appErr.Message)
	if details, ok := appErr.Details.([]service.FieldError); ok {
		parts := make([]string, 0, len(details))
		for _, d := range details {
			parts = append(parts, fmt.Sprintf("%s failed %s", d.Field, d.Rule))
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}
