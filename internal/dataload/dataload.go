// Package dataload reads the time-use datasets from CSV files.
package dataload

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"
)

// LoadCSV reads a header row followed by numeric rows. Every column is read
// as a float; cells that do not parse become NaN.
//
// Columns keeps the header exactly as written, duplicates included. When a
// header name repeats, the rightmost column supplies the row value. A header
// with no data rows yields a table without rows.
func LoadCSV(r io.Reader) (schema.Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return schema.Table{}, fmt.Errorf("failed to read CSV: %w", err)
	}

	header, hasRows, err := readHeader(content)
	if err != nil {
		return schema.Table{}, err
	}
	if !hasRows {
		return schema.Table{Columns: header, Rows: []schema.Row{}}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(content),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return schema.Table{}, fmt.Errorf("failed to parse CSV: %w", df.Err)
	}

	// gota renames repeated headers, so its columns are matched to the raw
	// header by position.
	names := df.Names()
	if len(names) != len(header) {
		return schema.Table{}, fmt.Errorf("failed to parse CSV: header has %d columns, parsed %d", len(header), len(names))
	}
	rows := make([]schema.Row, df.Nrow())
	for i := range rows {
		rows[i] = make(schema.Row, len(header))
	}
	for pos, name := range names {
		for i, v := range df.Col(name).Float() {
			rows[i][header[pos]] = v
		}
	}
	return schema.Table{Columns: header, Rows: rows}, nil
}

// readHeader returns the first record of content and whether any record
// follows it.
func readHeader(content []byte) ([]string, bool, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, errors.New("failed to parse CSV: missing header row")
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	_, err = reader.Read()
	switch {
	case errors.Is(err, io.EOF):
		return header, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return header, true, nil
}

// LoadFile reads a CSV dataset from disk.
func LoadFile(path string) (schema.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Table{}, err
	}
	defer func() { _ = f.Close() }()

	table, err := LoadCSV(f)
	if err != nil {
		return schema.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// LoadAll reads the dataset of every timescale in files concurrently. File
// names are relative to dir. The first failure cancels the remaining loads.
func LoadAll(ctx context.Context, dir string, files map[schema.Timescale]string) (map[schema.Timescale]schema.Table, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	tables := make(map[schema.Timescale]schema.Table, len(files))
	for ts, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, err := LoadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("loading %s dataset: %w", ts, err)
			}
			mu.Lock()
			tables[ts] = table
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// DefaultFiles maps every timescale to its conventional file name.
func DefaultFiles() map[schema.Timescale]string {
	files := make(map[schema.Timescale]string, len(schema.AllTimescales))
	for _, ts := range schema.AllTimescales {
		files[ts] = schema.DefaultDatasetFile(ts)
	}
	return files
}

// ExistingFiles keeps only the timescales whose file is present in dir.
func ExistingFiles(dir string, files map[schema.Timescale]string) map[schema.Timescale]string {
	present := make(map[schema.Timescale]string, len(files))
	for ts, name := range files {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			present[ts] = name
		}
	}
	return present
}
