package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage/seed"
	"github.com/mmynk/bordertrade/internal/storage/sqlite"
	"github.com/mmynk/bordertrade/pkg/logging"
)

const dayLayout = "2006-01-02"

// platform is what every subcommand reads.
type platform interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListResidents(ctx context.Context, groupID string) ([]models.Resident, error)
	Close() error
}

type rootOptions struct {
	dbPath   string
	fixtures string
	asOf     string
	jsonOut  bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "allocctl",
		Short:         "Preview order allocations and profit splits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: embedded fixtures)")
	cmd.PersistentFlags().StringVar(&opts.fixtures, "fixtures", "", "Fixtures YAML file used when --db is not set")
	cmd.PersistentFlags().StringVar(&opts.asOf, "as-of", "", "Day eligibility is evaluated against, YYYY-MM-DD (default: today)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of a table")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	cmd.AddCommand(newPreviewCmd(opts))
	cmd.AddCommand(newProfitCmd(opts))
	cmd.AddCommand(newMembersCmd(opts))
	return cmd
}

// open returns the platform selected by the flags.
func (o *rootOptions) open() (platform, error) {
	if o.dbPath != "" {
		store, err := sqlite.New(o.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return store, nil
	}

	var (
		f   *seed.Fixtures
		err error
	)
	if o.fixtures != "" {
		f, err = seed.LoadFile(o.fixtures)
	} else {
		f, err = seed.Default()
	}
	if err != nil {
		return nil, err
	}
	return newFixtureSource(f), nil
}

func (o *rootOptions) day() (time.Time, error) {
	if o.asOf == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(dayLayout, o.asOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: %w", o.asOf, err)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
