package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FieldProfileID      = "profile_id"
	FieldJobID          = "job_id"
	FieldCompanyID      = "company_id"
	FieldApplicationID  = "application_id"
	FieldUserID         = "user_id"
	FieldScoringOutcome = "scoring_outcome"
)

// ProfileField tags an entry with a profile id.
func ProfileField(id uuid.UUID) zap.Field {
	return idField(FieldProfileID, id)
}

func JobField(id uuid.UUID) zap.Field {
	return idField(FieldJobID, id)
}

func CompanyField(id uuid.UUID) zap.Field {
	return idField(FieldCompanyID, id)
}

func ApplicationField(id uuid.UUID) zap.Field {
	return idField(FieldApplicationID, id)
}

func UserField(id uuid.UUID) zap.Field {
	return idField(FieldUserID, id)
}

// idField renders the nil uuid as a skipped field so that half-built entities do not log zeros.
func idField(key string, id uuid.UUID) zap.Field {
	if id == uuid.Nil {
		return zap.Skip()
	}
	return zap.String(key, id.String())
}
