package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/out/postgres"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
	"github.com/suchimauz/clinic-availability-engine/internal/core/services/slot_generator_service"
)

type seriesInput struct {
	Base    domain.Occurrence        `json:"base"`
	Pattern domain.RecurrencePattern `json:"pattern"`
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create Postgres tables for schedules, exceptions, blocked times and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, mainLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer mainLogger.Sync()
			logger := mainLogger.WithModule("Migrate")

			if cfg.Postgres.DSN == "" {
				return fmt.Errorf("POSTGRES_DSN is required")
			}

			pool, err := postgres.Open(cmd.Context(), cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.EnsureSchema(cmd.Context(), pool); err != nil {
				logger.Error("postgres.schema.failed", out.LogFields{
					"error": err.Error(),
				})
				return err
			}

			logger.Info("postgres.schema.applied", out.LogFields{})
			return nil
		},
	}
}

func seedDefaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-default",
		Short: "Store the default weekly schedule for a clinician",
		RunE: func(cmd *cobra.Command, args []string) error {
			clinicianID, _ := cmd.Flags().GetString("clinician")
			effectiveFrom, _ := cmd.Flags().GetString("effective-from")

			clinicianID = strings.TrimSpace(clinicianID)
			if clinicianID == "" {
				return fmt.Errorf("--clinician is required")
			}
			from, err := json_types.ParseDate(effectiveFrom)
			if err != nil {
				return fmt.Errorf("--effective-from: %w", err)
			}

			cfg, mainLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer mainLogger.Sync()
			logger := mainLogger.WithModule("SeedDefault")

			if cfg.Postgres.DSN == "" {
				return fmt.Errorf("POSTGRES_DSN is required")
			}

			pool, err := postgres.Open(cmd.Context(), cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			schedule := domain.DefaultSchedule()
			schedule.ClinicianID = clinicianID
			schedule.EffectiveFrom = json_types.Date{Date: from}

			id, err := postgres.NewStoreAdapter(pool, mainLogger).SaveWeeklySchedule(cmd.Context(), schedule)
			if err != nil {
				return err
			}

			logger.Info("schedule.default.seeded", out.LogFields{
				"clinicianId":   clinicianID,
				"scheduleId":    id,
				"effectiveFrom": schedule.EffectiveFrom,
			})
			return nil
		},
	}

	cmd.Flags().String("clinician", "", "Clinician identifier")
	cmd.Flags().String("effective-from", "", "First date the schedule applies to (YYYY-MM-DD)")
	return cmd
}

func expandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand a recurrence pattern into concrete occurrences",
		Long:  "Reads {\"base\": {...}, \"pattern\": {...}} from --file (or stdin) and prints the series as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			var input seriesInput
			if err := readJSON(cmd, path, &input); err != nil {
				return err
			}

			service, sync, err := offlineService()
			if err != nil {
				return err
			}
			defer sync()

			series, err := service.ExpandSeries(cmd.Context(), input.Base, input.Pattern)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), series)
		},
	}

	cmd.Flags().String("file", "", "Path to the series JSON (stdin when empty)")
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a weekly schedule and report per-day warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			var schedule domain.WeeklySchedule
			if err := readJSON(cmd, path, &schedule); err != nil {
				return err
			}

			service, sync, err := offlineService()
			if err != nil {
				return err
			}
			defer sync()

			validation := service.ValidateSchedule(cmd.Context(), schedule)
			if err := writeJSON(cmd.OutOrStdout(), validation); err != nil {
				return err
			}

			if !validation.Valid {
				return fmt.Errorf("schedule has warnings")
			}
			return nil
		},
	}

	cmd.Flags().String("file", "", "Path to the weekly schedule JSON (stdin when empty)")
	return cmd
}

// offlineService: сервис без хранилища и кэша: развертывание серий и проверка
// расписаний к ним не обращаются
func offlineService() (*slot_generator_service.SlotGeneratorService, func(), error) {
	cfg, mainLogger, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}

	// Кэш здесь не нужен, даже если включен в окружении
	offline := *cfg
	offline.Cache.Enabled = false

	service := slot_generator_service.NewSlotGeneratorService(nil, nil, &offline, mainLogger)
	return service, func() { mainLogger.Sync() }, nil
}

func readJSON(cmd *cobra.Command, path string, dst any) error {
	var reader io.Reader = cmd.InOrStdin()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		reader = file
	}

	if err := json.NewDecoder(reader).Decode(dst); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
