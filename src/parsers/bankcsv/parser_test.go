package bankcsv

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestParseSemicolonBrazilianLocale(t *testing.T) {
	input := "Data;Descricao;Valor\r\n05/01/2025;Pagamento Cliente;1.250,00\r\n"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Parse() returned %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.Date != "2025-01-05" {
		t.Errorf("Date = %q, want %q", e.Date, "2025-01-05")
	}
	if e.Description != "Pagamento Cliente" {
		t.Errorf("Description = %q, want %q", e.Description, "Pagamento Cliente")
	}
	if !e.Amount.Equal(decimal.RequireFromString("1250.00")) {
		t.Errorf("Amount = %s, want 1250.00", e.Amount)
	}
	if e.Kind != models.KindCredit {
		t.Errorf("Kind = %q, want credit", e.Kind)
	}
}

func TestParseCommaDelimiter(t *testing.T) {
	input := "date,memo,amount\n2025-02-01,Taxa de manutencao,-15\n2025-02-02,Deposito,200\n"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Parse() returned %d entries, want 2", len(entries))
	}
	if entries[0].Kind != models.KindDebit {
		t.Errorf("entries[0].Kind = %q, want debit", entries[0].Kind)
	}
	// Dates not in DD/MM/YYYY pass through unchanged.
	if entries[0].Date != "2025-02-01" {
		t.Errorf("entries[0].Date = %q, want %q", entries[0].Date, "2025-02-01")
	}
	if !entries[1].Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("entries[1].Amount = %s, want 200", entries[1].Amount)
	}
}

func TestParseHeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"portuguese", "Data Mov.;Historico;Valor (R$)"},
		{"english", "Posting Date;Name;Amount"},
		{"memo", "date;memo;value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.header + "\n05/03/2025;qualquer;10,00\n"
			entries, err := NewParser().Parse(strings.NewReader(input))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("Parse() returned %d entries, want 1", len(entries))
			}
			if entries[0].Description != "qualquer" {
				t.Errorf("Description = %q, want %q", entries[0].Description, "qualquer")
			}
		})
	}
}

func TestParseMissingRequiredColumn(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no value column", "Data;Descricao\n05/01/2025;Pagamento\n"},
		{"no date column", "Descricao;Valor\nPagamento;10,00\n"},
		{"empty file", "\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(strings.NewReader(tt.input))
			if !errors.Is(err, ErrColumnDetection) {
				t.Fatalf("Parse() error = %v, want ErrColumnDetection", err)
			}
		})
	}
}

func TestParseDropsNonNumericRows(t *testing.T) {
	input := "Data;Descricao;Valor\n" +
		"05/01/2025;Pagamento;100,00\n" +
		"06/01/2025;Saldo anterior;---\n" +
		"07/01/2025;Tarifa;-9,90\n"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Parse() returned %d entries, want 2 (subtotal row dropped)", len(entries))
	}
	if !entries[1].Amount.Equal(decimal.RequireFromString("-9.90")) {
		t.Errorf("entries[1].Amount = %s, want -9.90", entries[1].Amount)
	}
}

func TestParseQuotedCells(t *testing.T) {
	input := "\"Data\";\"Descricao\";\"Valor\"\n\"05/01/2025\";\"Botijao P13\";\"115,00\"\n"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Parse() returned %d entries, want 1", len(entries))
	}
	if entries[0].Description != "Botijao P13" {
		t.Errorf("Description = %q, want %q", entries[0].Description, "Botijao P13")
	}
	if !entries[0].Amount.Equal(decimal.RequireFromString("115.00")) {
		t.Errorf("Amount = %s, want 115.00", entries[0].Amount)
	}
}

func TestParseMissingDescriptionColumn(t *testing.T) {
	input := "Data;Valor\n05/01/2025;50,00\n"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Parse() returned %d entries, want 1", len(entries))
	}
	if entries[0].Description != DescriptionPlaceholder {
		t.Errorf("Description = %q, want placeholder %q", entries[0].Description, DescriptionPlaceholder)
	}
}
