package cli

import "testing"

func TestNeedsApp(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"tui"}, true},
		{[]string{"invoices", "pdf", "7", "-o", "/tmp/x.pdf"}, true},
		{[]string{"db", "init"}, true},
		{[]string{"--help"}, false},
		{[]string{"invoices", "-h"}, false},
		{[]string{"help", "invoices"}, false},
		{[]string{"config", "init"}, false},
		{[]string{"config", "show"}, false},
	}
	for _, tt := range tests {
		if got := NeedsApp(tt.args); got != tt.want {
			t.Errorf("NeedsApp(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Facturación anual", 10); got != "Factura..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("corto", 10); got != "corto" {
		t.Errorf("truncate = %q", got)
	}
}
