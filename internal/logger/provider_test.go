package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCommonFields(t *testing.T) {
	fields := CommonFields("  Gemini ", " gemini-2.5-pro ")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}
	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-pro" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}

	if got := CommonFields("openai", "   "); len(got) != 1 {
		t.Fatalf("expected blank model to be dropped, got %d fields", len(got))
	}
	if got := CommonFields("", ""); len(got) != 0 {
		t.Fatalf("expected no fields, got %d", len(got))
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "openai", "gpt-4o-mini").Info("scoring")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "openai" || ctx[FieldModel] != "gpt-4o-mini" {
		t.Fatalf("unexpected context: %v", ctx)
	}

	if WithCommonFields(nil, "", "") == nil {
		t.Fatalf("expected a no-op logger for nil input")
	}
}
