package service

import (
	"context"
	"strings"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository"
	"kumarajiva/internal/srs"
	"kumarajiva/pkg/validator"

	"go.uber.org/zap"
)

// VocabularyService handles vocabulary CRUD, the daily add quota and bulk
// import/export
type VocabularyService struct {
	vocabRepo repository.VocabularyRepository
	tx        repository.TxRunner
	scheduler *srs.Scheduler
	logger    *zap.Logger
	now       clock
}

// NewVocabularyService creates a new vocabulary service
func NewVocabularyService(
	vocabRepo repository.VocabularyRepository,
	tx repository.TxRunner,
	scheduler *srs.Scheduler,
	logger *zap.Logger,
) *VocabularyService {
	return &VocabularyService{
		vocabRepo: vocabRepo,
		tx:        tx,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// RemainingNewWords returns how many words may still be added today
func (s *VocabularyService) RemainingNewWords(ctx context.Context, scope domain.Scope) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	added, err := s.addedToday(ctx, scope)
	if err != nil {
		return 0, err
	}
	return max(s.scheduler.Config().DailyNewWords-added, 0), nil
}

func (s *VocabularyService) addedToday(ctx context.Context, scope domain.Scope) (int, error) {
	today := s.scheduler.Today(s.now())
	return s.vocabRepo.CountCreatedBetween(ctx, scope, today.StartMillis(), today.EndMillis())
}

// Add stores a new word, enforcing the daily new-word quota
func (s *VocabularyService) Add(ctx context.Context, scope domain.Scope, entry domain.VocabularyEntry) (*domain.AddResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := validateEntry(&entry); err != nil {
		return nil, err
	}

	limit := s.scheduler.Config().DailyNewWords
	var remaining int

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		added, err := s.addedToday(ctx, scope)
		if err != nil {
			return err
		}
		if added >= limit {
			return domain.QuotaExceeded("daily limit of %d new words reached", limit)
		}

		entry.ID = 0
		entry.Mastered = false
		entry.CreatedAt = s.now().UnixMilli()
		entry.OwnerID = scope.OwnerID
		if err := s.vocabRepo.Create(ctx, &entry); err != nil {
			return err
		}

		remaining = limit - added - 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Word added",
		zap.String("word", entry.Word),
		ownerField(scope),
		zap.Int("remaining_today", remaining),
	)
	return &domain.AddResult{Entry: entry, RemainingToday: remaining}, nil
}

// Get returns one word
func (s *VocabularyService) Get(ctx context.Context, scope domain.Scope, word string) (*domain.VocabularyEntry, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.vocabRepo.Get(ctx, scope, strings.TrimSpace(word))
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.NotFound("word %q not found", word)
	}
	return entry, nil
}

// List returns words newest first. A non-positive limit returns all of them.
func (s *VocabularyService) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]domain.VocabularyEntry, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, domain.Validation("offset must be non-negative")
	}
	return s.vocabRepo.List(ctx, scope, limit, offset)
}

// Update applies an explicit edit and returns the updated word
func (s *VocabularyService) Update(ctx context.Context, scope domain.Scope, word string, patch domain.VocabularyPatch) (*domain.VocabularyEntry, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, domain.Validation("nothing to update")
	}
	if patch.Definitions != nil {
		if err := validator.ValidateVar(*patch.Definitions, "required,min=1,dive"); err != nil {
			return nil, domain.Validation("%v", err)
		}
	}
	if patch.AudioURL != nil {
		if err := validator.ValidateVar(*patch.AudioURL, "omitempty,url"); err != nil {
			return nil, domain.Validation("%v", err)
		}
	}

	word = strings.TrimSpace(word)
	found, err := s.vocabRepo.Update(ctx, scope, word, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NotFound("word %q not found", word)
	}

	if patch.Mastered != nil {
		s.logger.Info("Mastered flag edited",
			zap.String("word", word),
			ownerField(scope),
			zap.Bool("mastered", *patch.Mastered),
		)
	}
	return s.Get(ctx, scope, word)
}

// Delete removes a word. Its review history is kept.
func (s *VocabularyService) Delete(ctx context.Context, scope domain.Scope, word string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	word = strings.TrimSpace(word)
	deleted, err := s.vocabRepo.Delete(ctx, scope, word)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NotFound("word %q not found", word)
	}

	s.logger.Info("Word deleted", zap.String("word", word), ownerField(scope))
	return nil
}

// Import upserts records in one transaction. Mastered flags and creation
// times are taken from the records and the daily quota does not apply.
// Invalid records are skipped and reported.
func (s *VocabularyService) Import(ctx context.Context, scope domain.Scope, entries []domain.VocabularyEntry) (*domain.ImportResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Skipped: []string{}}
	now := s.now().UnixMilli()

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, entry := range entries {
			if err := validateEntry(&entry); err != nil {
				s.logger.Warn("Skipping invalid import record",
					zap.String("word", entry.Word),
					zap.Error(err),
				)
				result.Skipped = append(result.Skipped, entry.Word)
				continue
			}
			if entry.CreatedAt <= 0 {
				entry.CreatedAt = now
			}
			entry.OwnerID = scope.OwnerID
			if err := s.vocabRepo.Upsert(ctx, &entry); err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vocabulary imported",
		ownerField(scope),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// Export returns every word keyed by its text, in the import record shape
func (s *VocabularyService) Export(ctx context.Context, scope domain.Scope) (map[string]domain.VocabularyEntry, error) {
	entries, err := s.List(ctx, scope, 0, 0)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.VocabularyEntry, len(entries))
	for _, e := range entries {
		out[e.Word] = e
	}
	return out, nil
}
