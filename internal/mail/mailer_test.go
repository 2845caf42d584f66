package mail

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andy/facturas/internal/config"
)

func TestSendNotConfigured(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{})

	err := m.Send(&Message{To: "cliente@example.com"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendWithoutRecipient(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "localhost", Port: 25})

	if err := m.Send(&Message{Subject: "Factura 100"}); err == nil {
		t.Error("expected error for missing recipient")
	}
}

func TestBuildMessage(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "Factura_100.pdf")
	if err := os.WriteFile(attachment, []byte("%PDF-1.3"), 0o644); err != nil {
		t.Fatalf("failed to write attachment: %v", err)
	}

	m := NewSMTPMailer(config.MailConfig{Host: "localhost", Username: "facturacion@example.com"})
	msg := m.build(&Message{
		To:          "cliente@example.com",
		Subject:     "Factura 100",
		Body:        "Adjuntamos la factura.",
		Attachments: []string{attachment},
	})

	if got := msg.GetHeader("From"); len(got) != 1 || got[0] != "facturacion@example.com" {
		t.Errorf("From = %v, want the username as fallback", got)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"To: cliente@example.com", "Subject: Factura 100", "Factura_100.pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("message is missing %q", want)
		}
	}
}
