package iocache

import (
	"errors"
	"fmt"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/internal/parquet"
)

// ExecuteRunExport exports the run history and label anchors of the global
// run store to Parquet files.
func ExecuteRunExport(outputFile string) error {
	return ExportRuns(Manager.GetRunStore(), outputFile)
}

// ExportRuns writes <outputFile>.runs.parquet and <outputFile>.labels.parquet
// from the given store.
func ExportRuns(store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not configured. Set --run-backend")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total label anchors: %d\n", status.TableSizes[labelAnchorsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	labels, err := store.GetAllLabels()
	if err != nil {
		return fmt.Errorf("failed to retrieve label anchors: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	labelsFile := outputFile + ".labels.parquet"
	parquetLabels := parquet.ConvertLabelRecords(labels)
	if err := parquet.WriteLabelsParquet(parquetLabels, labelsFile); err != nil {
		return fmt.Errorf("failed to write label anchors: %w", err)
	}
	fmt.Printf("Exported %d label anchors to: %s\n", len(parquetLabels), labelsFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, pandas (via pyarrow) or Spark.")
	return nil
}
