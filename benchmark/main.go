// Package main provides a performance benchmarking tool for the anamericanday CLI.
// It measures execution times for every timescale dataset and command type,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - anamericanday binary installed and available in PATH
// - A data directory holding day.csv, week.csv, year.csv and/or age.csv
//
// Usage: go run benchmark/main.go [data-dir]
//
//	data-dir: Directory containing the time-use datasets
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Timescale   string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Timescales  map[string]string // timescale -> dataset file
	Commands    map[string]string // command -> completion phrase
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataDir:     os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Timescales: map[string]string{
			"day":      "day.csv",
			"week":     "week.csv",
			"year":     "year.csv",
			"lifetime": "age.csv",
		},
		Commands: map[string]string{
			"extract":   "Extracted",
			"labels":    "Found",
			"breakdown": "Computed",
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using anamericanday cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("anamericanday", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary and at least one dataset exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("anamericanday"); err != nil {
		return fmt.Errorf("anamericanday binary not found in PATH")
	}
	if len(availableTimescales(config)) == 0 {
		return fmt.Errorf("no datasets found in %s", config.DataDir)
	}
	return nil
}

// availableTimescales lists the timescales whose dataset exists, in a fixed order.
func availableTimescales(config BenchmarkConfig) []string {
	var found []string
	for _, ts := range []string{"day", "week", "year", "lifetime"} {
		if _, err := os.Stat(filepath.Join(config.DataDir, config.Timescales[ts])); err == nil {
			found = append(found, ts)
		}
	}
	return found
}

// runBenchmarks executes all benchmark tests across available timescales
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult
	timescales := availableTimescales(config)

	fmt.Printf("Starting benchmark: %d timescales, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(timescales), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, ts := range timescales {
		fmt.Printf("Benchmarking %s\n", ts)
		for _, command := range []string{"extract", "labels", "breakdown"} {
			results = append(results, runBenchmarkSuite(config, ts, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, timescale, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, timescale)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, timescale, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Timescale:   timescale,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, timescale, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, config.DataDir, "--timescale", timescale, "--cache-backend", cacheBackend}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "anamericanday", args...).CombinedOutput()
		elapsed := time.Since(start)
		cancel()

		if err == nil && isSuccess(output, config.Commands[command]) {
			times = append(times, elapsed.Seconds())
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, completionPhrase string) bool {
	return strings.Contains(string(output), completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("anamericanday_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"timescale", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Timescale, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"extract", "labels", "breakdown"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-10s: No-cache: %s, Cold: %s, Warm: %s\n", result.Timescale, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
