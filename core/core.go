// Package core has core logic for extracting, stacking and labeling time-use datasets.
package core

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/internal/dataload"
	"github.com/benmcmorran/anamericanday/internal/outwriter"
	"github.com/benmcmorran/anamericanday/schema"
	"golang.org/x/sync/errgroup"
)

// ExecutorFunc defines the function signature for executing the extraction commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteExtract extracts the dataset of the configured timescale and prints
// its stacked series. It serves as the main entry point for the 'extract' command.
func ExecuteExtract(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	ex, duration, err := GetExtractionResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteExtraction(ex, cfg, duration)
}

// ExecuteLabels computes the label anchors of one demographic and prints them.
func ExecuteLabels(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetLabelsResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteLabels(result, cfg, duration)
}

// ExecuteBreakdown computes the activity shares of one demographic and prints them.
func ExecuteBreakdown(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetBreakdownResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteBreakdown(result, cfg, duration)
}

// GetExtractionResult extracts the configured timescale without printing it.
// A non-empty cfg.Demographic must name a discovered demographic.
func GetExtractionResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Extraction, time.Duration, error) {
	start := time.Now()
	ex, _, err := runExtraction(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	if cfg.Demographic != "" && !ex.HasDemographic(cfg.Demographic) {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownDemographic, cfg.Demographic)
	}
	return ex, time.Since(start), nil
}

// GetLabelsResult computes the label anchors of one demographic and records
// them against the tracked run when run tracking is enabled.
func GetLabelsResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.LabelResult, time.Duration, error) {
	start := time.Now()
	ex, ctx, err := runExtraction(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := Labels(ex, demographicOrDefault(cfg.Demographic), cfg.Threshold)
	if err != nil {
		return nil, 0, err
	}
	recordLabels(ctx, mgr, result)
	return result, time.Since(start), nil
}

// GetBreakdownResult computes the activity shares of one demographic, either
// at cfg.Index or averaged across the timescale.
func GetBreakdownResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.BreakdownResult, time.Duration, error) {
	start := time.Now()
	ex, _, err := runExtraction(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := Breakdown(ex, demographicOrDefault(cfg.Demographic), cfg.Index)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// runExtraction performs the common tracking, caching and extraction steps.
// The returned context carries the run ID when the run is tracked.
func runExtraction(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Extraction, context.Context, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogExtractionHeader(os.Stderr, cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	var runStore contract.RunStore
	if mgr != nil {
		runStore = mgr.GetRunStore()
	}
	if runStore != nil {
		params := schema.RunParams{
			Timescale:     cfg.Timescale,
			SourcePath:    cfg.DatasetPath(cfg.Timescale),
			Reference:     cfg.Reference,
			MissingPolicy: cfg.Missing,
		}
		var err error
		runID, err = runStore.BeginRun(time.Now(), params)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Extraction (with caching) ---
	ex, _, err := cachedExtract(cfg, cfg.Timescale, mgr)
	if err != nil {
		return nil, ctx, err
	}
	if ex.MissingCells > 0 {
		contract.LogWarn(fmt.Sprintf("%s dataset", ex.Timescale),
			fmt.Errorf("%d missing cells were read as zero", ex.MissingCells))
	}

	// --- 2. End Run Tracking ---
	if runStore != nil && runID > 0 {
		if err := runStore.EndRun(runID, time.Now(), ex.Summary()); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}
	return ex, ctx, nil
}

// recordLabels stores label anchors against the run carried by ctx.
func recordLabels(ctx context.Context, mgr contract.CacheManager, result *schema.LabelResult) {
	runID := runIDFrom(ctx)
	if runID == 0 || mgr == nil {
		return
	}
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return
	}
	if err := runStore.RecordLabels(runID, result); err != nil {
		contract.LogWarn("Failed to record label anchors", err)
	}
}

// LoadDataset extracts every timescale whose dataset is present in the data
// directory. Extractions go through the cache when one is configured.
func LoadDataset(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.Dataset, error) {
	files := dataload.ExistingFiles(cfg.DataDir, dataload.DefaultFiles())
	if len(files) == 0 {
		return nil, fmt.Errorf("no datasets found in %s", cfg.DataDir)
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetExtractionStore()
	}
	if store == nil {
		tables, err := dataload.LoadAll(ctx, cfg.DataDir, files)
		if err != nil {
			return nil, err
		}
		return Combine(tables, ExtractOptions{Reference: cfg.Reference, Missing: cfg.Missing})
	}

	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	dataset := make(schema.Dataset, len(files))
	for ts := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ex, _, err := cachedExtract(cfg, ts, mgr)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", ts, err)
			}
			mu.Lock()
			dataset[ts] = ex
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dataset, nil
}

// demographicOrDefault falls back to the aggregate demographic.
func demographicOrDefault(demographic string) string {
	if demographic == "" {
		return schema.AggregateDemographic
	}
	return demographic
}
