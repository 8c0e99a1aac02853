package logger

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDomainFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	profileID := uuid.New()
	jobID := uuid.New()

	log.Info("scored", ProfileField(profileID), JobField(jobID), CompanyField(uuid.Nil))

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProfileID] != profileID.String() {
		t.Fatalf("unexpected profile id: %v", ctx[FieldProfileID])
	}
	if ctx[FieldJobID] != jobID.String() {
		t.Fatalf("unexpected job id: %v", ctx[FieldJobID])
	}
	if _, ok := ctx[FieldCompanyID]; ok {
		t.Fatalf("expected nil company id to be skipped")
	}
}
