package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"metacore/application/analysis"
	"metacore/domain"
	"metacore/infrastructure/persistence"
	"metacore/infrastructure/store"
)

var persistCmd = &cobra.Command{
	Use:   "persist",
	Short: "Load, save, or delete a persisted analysis record",
}

var persistLoadCmd = &cobra.Command{
	Use:   "load <test-id>",
	Short: "Load a persisted record by test id",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersistLoad,
}

var persistSaveCmd = &cobra.Command{
	Use:   "save <test-id> <result-json-path>",
	Short: "Save an analysis result as a persisted record",
	Args:  cobra.ExactArgs(2),
	RunE:  runPersistSave,
}

var persistDeleteCmd = &cobra.Command{
	Use:   "delete <test-id>",
	Short: "Delete a persisted record by test id",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersistDelete,
}

func init() {
	rootCmd.AddCommand(persistCmd)
	persistCmd.AddCommand(persistLoadCmd, persistSaveCmd, persistDeleteCmd)
}

func newAdapter(ctx context.Context) (*persistence.Adapter, *store.Postgres, error) {
	if postgresDSN == "" {
		return nil, nil, fmt.Errorf("--postgres-dsn is required")
	}
	db, err := store.Connect(postgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	cache := store.NewCache(redisAddr, redisPassword, redisDB, 10*time.Minute)
	return persistence.NewAdapter(db, cache, analysis.AlgorithmVersion), db, nil
}

func runPersistLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	adapter, db, err := newAdapter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, found, err := adapter.Load(ctx, args[0])
	if err != nil && !domain.IsKind(err, domain.ErrPersistenceConflict) {
		return err
	}
	if domain.IsKind(err, domain.ErrPersistenceConflict) {
		fmt.Println("stored record is from a stale algorithm version; rerun analyze and save")
		return nil
	}
	if !found {
		fmt.Println("no current record for this test id")
		return nil
	}
	encoded, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func runPersistSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	adapter, db, err := newAdapter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read result file: %w", err)
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("parse result file: %w", err)
	}

	rec, err := adapter.Save(ctx, args[0], result)
	if err != nil {
		return err
	}
	fmt.Printf("saved record %s (updated_at %s)\n", rec.TestID, rec.UpdatedAt.Format(time.RFC3339))
	return nil
}

func runPersistDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	adapter, db, err := newAdapter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := adapter.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted record %s\n", args[0])
	return nil
}
