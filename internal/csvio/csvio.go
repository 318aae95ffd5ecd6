// Package csvio serializes EngineResult rows to the fixed-column CSV format
// consumed by external tooling. It is deliberately built on the standard
// library's encoding/csv rather than a third-party CSV library: the column
// set is fixed and fully specified, and encoding/csv already implements
// RFC 4180 quoting for any field containing a comma, quote, or newline,
// leaving nothing for a third-party CSV package to add for a single,
// already-defined output shape.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/example/kigalisim/internal/engine"
)

// Header is the fixed column order for EngineResult rows.
var Header = []string{
	"scenario", "trial", "year", "application", "substance",
	"manufacture", "import", "recycle",
	"domesticConsumption", "importConsumption", "recycleConsumption",
	"population", "populationNew",
	"rechargeEmissions", "eolEmissions", "energyConsumption",
}

// Writer writes EngineResult rows as RFC 4180 CSV.
type Writer struct {
	w *csv.Writer
}

// NewWriter wraps w, writing the header row immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("csvio: write header: %w", err)
	}
	return &Writer{w: cw}, nil
}

// WriteResult appends one row.
func (cw *Writer) WriteResult(r engine.EngineResult) error {
	record := []string{
		r.Scenario,
		strconv.Itoa(r.Trial),
		strconv.Itoa(r.Year),
		r.Application,
		r.Substance,
		r.Manufacture.Value.String(),
		r.Import.Value.String(),
		r.Recycle.Value.String(),
		r.DomesticConsumption.Value.String(),
		r.ImportConsumption.Value.String(),
		r.RecycleConsumption.Value.String(),
		r.Population.Value.String(),
		r.PopulationNew.Value.String(),
		r.RechargeEmissions.Value.String(),
		r.EolEmissions.Value.String(),
		r.EnergyConsumption.Value.String(),
	}
	if err := cw.w.Write(record); err != nil {
		return fmt.Errorf("csvio: write row: %w", err)
	}
	return nil
}

// WriteAll writes every result in order and flushes.
func (cw *Writer) WriteAll(results []engine.EngineResult) error {
	for _, r := range results {
		if err := cw.WriteResult(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// Flush flushes any buffered rows to the underlying writer and reports the
// first error encountered, if any.
func (cw *Writer) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

// WriteAll is a convenience entry point that writes a header plus every
// result to w in one call.
func WriteAll(w io.Writer, results []engine.EngineResult) error {
	cw, err := NewWriter(w)
	if err != nil {
		return err
	}
	return cw.WriteAll(results)
}
