package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/benmcmorran/anamericanday/internal/contract"
)

// writeWithFile runs writer against the configured output file, or stdout when none is set.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return writer(file)
	}
	defer func() { _ = file.Close() }()

	if err := writer(file); err != nil {
		return err
	}
	announceWrite(os.Stderr, successMsg, outputFile)
	return nil
}

// announceWrite tells the user where an export landed. Stdout exports stay silent.
func announceWrite(w io.Writer, what, outputFile string) {
	if outputFile == "" {
		return
	}
	fmt.Fprintf(w, "💾 %s to %s\n", what, outputFile)
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes header followed by whatever writeRows emits.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters returns the number formatters shared by the CSV and table writers.
// A NaN share renders as an empty cell and a share that rounds to zero never prints a sign.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtInt func(int) string) {
	fmtFloat = func(v float64) string {
		if math.IsNaN(v) {
			return ""
		}
		s := strconv.FormatFloat(v, 'f', precision, 64)
		if r, err := strconv.ParseFloat(s, 64); err == nil && r == 0 {
			return strconv.FormatFloat(0, 'f', precision, 64)
		}
		return s
	}
	return fmtFloat, strconv.Itoa
}
