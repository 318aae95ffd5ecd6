package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/quantity"
)

func sampleResult() engine.EngineResult {
	return engine.EngineResult{
		Scenario:            "bau",
		Trial:               0,
		Year:                2025,
		Application:         "Domestic Refrigeration",
		Substance:           "HFC-134a",
		Manufacture:         quantity.New(decimalx.FromInt(100000), "kg"),
		Import:              quantity.New(decimalx.Zero, "kg"),
		Recycle:             quantity.New(decimalx.Zero, "kg"),
		DomesticConsumption: quantity.New(decimalx.FromInt(500), "tCO2e"),
		ImportConsumption:   quantity.New(decimalx.Zero, "tCO2e"),
		RecycleConsumption:  quantity.New(decimalx.Zero, "tCO2e"),
		Population:          quantity.New(decimalx.FromInt(100000), "units"),
		PopulationNew:       quantity.New(decimalx.FromInt(100000), "units"),
		RechargeEmissions:   quantity.New(decimalx.Zero, "tCO2e"),
		EolEmissions:        quantity.New(decimalx.Zero, "tCO2e"),
		EnergyConsumption:   quantity.New(decimalx.Zero, "kwh"),
	}
}

func TestWriteAllProducesHeaderAndRow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAll(&buf, []engine.EngineResult{sampleResult()}); err != nil {
		t.Fatal(err)
	}

	reader := csv.NewReader(strings.NewReader(buf.String()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("produced CSV did not parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "scenario" || records[0][len(records[0])-1] != "energyConsumption" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "bau" || records[1][3] != "Domestic Refrigeration" {
		t.Fatalf("unexpected row: %v", records[1])
	}
	if records[1][5] != "100000" {
		t.Fatalf("expected manufacture=100000, got %s", records[1][5])
	}
}

func TestWriteResultQuotesCommasRFC4180(t *testing.T) {
	r := sampleResult()
	r.Application = "Refrigeration, Commercial"

	var buf bytes.Buffer
	if err := WriteAll(&buf, []engine.EngineResult{r}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"Refrigeration, Commercial"`) {
		t.Fatalf("expected RFC 4180 quoting around comma-bearing field, got: %s", buf.String())
	}

	reader := csv.NewReader(strings.NewReader(buf.String()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if records[1][3] != "Refrigeration, Commercial" {
		t.Fatalf("expected round-tripped application name, got %q", records[1][3])
	}
}

func TestWriterIncrementalWrites(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	first := sampleResult()
	second := sampleResult()
	second.Year = 2026
	if err := w.WriteResult(first); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteResult(second); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	reader := csv.NewReader(strings.NewReader(buf.String()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[1][2] != "2025" || records[2][2] != "2026" {
		t.Fatalf("expected years 2025 then 2026, got %s then %s", records[1][2], records[2][2])
	}
}
