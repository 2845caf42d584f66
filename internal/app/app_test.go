package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andy/facturas/internal/config"
	"github.com/andy/facturas/internal/domain"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "facturas.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "out")
	cfg.Invoice.LogoPath = filepath.Join(dir, "no-logo.jpg")
	cfg.Log.File = filepath.Join(dir, "logs", "facturas.log")
	cfg.Log.Level = "debug"
	return cfg
}

func TestNewWithConfig(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	defer a.Close()

	if err := a.DB.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	invoices, err := a.InvoiceService.ListInvoices(context.Background(), domain.InvoiceFilter{})
	if err != nil {
		t.Fatalf("ListInvoices failed: %v", err)
	}
	if len(invoices) != 0 {
		t.Errorf("expected an empty database, got %d invoices", len(invoices))
	}

	a.Logger.Info("test entry")
	if err := a.Logger.Sync(); err != nil {
		t.Logf("sync: %v", err)
	}
	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "test entry") {
		t.Errorf("log file does not contain the entry: %s", data)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(config.LogConfig{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")}); err == nil {
		t.Error("expected error for invalid level")
	}

	logger, err := NewLogger(config.LogConfig{})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Info("discarded")
}

func TestNewRendererUsesTaxRate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Invoice.TaxRate = 0.10

	r := NewRenderer(cfg, zap.NewNop())
	if got := r.TaxRate().String(); got != "0.1" {
		t.Errorf("tax rate = %s, want 0.1", got)
	}
}

func TestSaveConfigRebuildsServices(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	defer a.Close()
	a.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")

	before := a.InvoiceService
	newDir := filepath.Join(t.TempDir(), "facturas")
	a.Config.Invoice.OutputDir = newDir
	if err := a.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	if a.InvoiceService == before {
		t.Error("expected the invoice service to be rebuilt")
	}
	if got := a.InvoiceService.DefaultPDFPath("7"); got != filepath.Join(newDir, "Factura_7.pdf") {
		t.Errorf("DefaultPDFPath = %q", got)
	}

	loaded, err := config.Load(a.ConfigPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Invoice.OutputDir != newDir {
		t.Errorf("saved output dir = %q, want %q", loaded.Invoice.OutputDir, newDir)
	}

	a.Config.Invoice.TaxRate = 1.5
	if err := a.SaveConfig(); err == nil {
		t.Error("expected validation error for tax rate 1.5")
	}
}
