package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"calmcompanion/internal/config"
	"calmcompanion/internal/repository"
	"calmcompanion/internal/service"
	"calmcompanion/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the slice of the server's object graph the operator commands need
type app struct {
	store    *storage.Store
	profiles *service.ProfileService
	backup   *service.BackupService
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	backend, err := storage.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	store := storage.NewStore(backend)
	cs := repository.NewCollectionStore(ctx, store, storage.NewKeyspace(cfg.StorePrefix, cfg.DefaultProfileID))

	return &app{
		store:    store,
		profiles: service.NewProfileService(cs, repository.NewProfileRepository(cs)),
		backup:   service.NewBackupService(cs),
	}, nil
}

// withApp opens the store for the duration of run
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.store.Close()
	return run(ctx, a)
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companionctl",
		Short: "Calm Companion data maintenance",
		Long: `Operator tool for the Calm Companion store.

The store is selected with the same environment variables as the server
(STORE_BACKEND, DB_TYPE, DB_PATH, DATABASE_URL, REDIS_ADDR, ...).

Examples:
  companionctl profiles
  companionctl export --output backup.json
  companionctl import --input backup.json --profile 0b6e...
  companionctl reset --yes
`,
		SilenceUsage: true,
	}

	cmd.AddCommand(exportCmd(), importCmd(), resetCmd(), profilesCmd())
	return cmd
}

func exportCmd() *cobra.Command {
	var outputPath, profileID string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a profile's cards and routine to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = fmt.Sprintf("calmcompanion_backup_%s.json", time.Now().Format("20060102_150405"))
			}

			// Ensure directory exists
			if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				defer f.Close()

				log.Printf("Exporting to: %s", outputPath)
				if err := a.backup.ExportToWriter(ctx, f, profileID); err != nil {
					return err
				}

				if info, err := f.Stat(); err == nil {
					log.Printf("Export complete! File size: %.2f KB", float64(info.Size())/1024)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Output file path (default: calmcompanion_backup_YYYYMMDD_HHMMSS.json)")
	cmd.Flags().StringVar(&profileID, "profile", "", "Profile id to export (default: active profile)")
	return cmd
}

func importCmd() *cobra.Command {
	var inputPath, profileID string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore cards and routine from a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("failed to open input file: %w", err)
			}
			defer f.Close()

			return withApp(cmd, func(ctx context.Context, a *app) error {
				backup, err := a.backup.ImportFromReader(ctx, f, profileID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards and %d routine tasks into profile %s\n",
					len(backup.Cards), len(backup.Routine), backup.ProfileID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Input file path (required)")
	cmd.Flags().StringVar(&profileID, "profile", "", "Profile id to import into (default: active profile)")
	cmd.MarkFlagRequired("input")
	return cmd
}

func resetCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all application data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("reset deletes every profile and collection; pass --yes to confirm")
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.profiles.ResetAppData(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All application data removed")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the reset")
	return cmd
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List profiles and mark the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				activeID, _ := a.profiles.ActiveProfile(ctx)

				profiles := a.profiles.ListProfiles(ctx)
				if len(profiles) == 0 {
					fmt.Fprintf(out, "No profiles (active: %s)\n", activeID)
					return nil
				}
				for _, p := range profiles {
					marker := " "
					if p.ID == activeID {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s  %s %s\n", marker, p.ID, p.Avatar, p.Name)
				}
				return nil
			})
		},
	}
}
