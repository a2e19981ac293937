package service

import (
	"strings"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/pkg/validator"

	"go.uber.org/zap"
)

// ownerField tags a log entry with the scope owner. The shared legacy
// scope logs as null.
func ownerField(scope domain.Scope) zap.Field {
	return zap.Int64p("owner_id", scope.OwnerID)
}

// validateEntry normalizes user input and checks it against the entry's tags.
func validateEntry(e *domain.VocabularyEntry) error {
	e.Word = strings.TrimSpace(e.Word)
	e.MemoryMethod = strings.TrimSpace(e.MemoryMethod)
	e.AudioURL = strings.TrimSpace(e.AudioURL)
	for i := range e.Definitions {
		e.Definitions[i].PartOfSpeech = strings.TrimSpace(e.Definitions[i].PartOfSpeech)
		e.Definitions[i].Meaning = strings.TrimSpace(e.Definitions[i].Meaning)
	}
	if e.Pronunciation == nil {
		e.Pronunciation = domain.Pronunciation{}
	}
	if err := validator.ValidateStruct(e); err != nil {
		return domain.Validation("%v", err)
	}
	return nil
}

type clock func() time.Time
