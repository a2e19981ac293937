package service

import (
	"context"
	"strings"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository"
	"kumarajiva/internal/srs"

	"go.uber.org/zap"
)

// ReviewService owns the review ledger: recording answers, mastery and
// learning history
type ReviewService struct {
	vocabRepo  repository.VocabularyRepository
	reviewRepo repository.ReviewRepository
	tx         repository.TxRunner
	scheduler  *srs.Scheduler
	logger     *zap.Logger
	now        clock
}

// NewReviewService creates a new review service
func NewReviewService(
	vocabRepo repository.VocabularyRepository,
	reviewRepo repository.ReviewRepository,
	tx repository.TxRunner,
	scheduler *srs.Scheduler,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		vocabRepo:  vocabRepo,
		reviewRepo: reviewRepo,
		tx:         tx,
		scheduler:  scheduler,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordReview appends an answer and masters the word when the answer
// completes the streak. All steps share one transaction. A mastered word
// stays mastered whatever later answers are.
func (s *ReviewService) RecordReview(ctx context.Context, scope domain.Scope, word string, wasCorrect bool) (*domain.ReviewOutcome, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, domain.Validation("word cannot be empty")
	}

	outcome := &domain.ReviewOutcome{Word: word, Result: wasCorrect}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		entry, err := s.vocabRepo.Get(ctx, scope, word)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.NotFound("word %q not found", word)
		}

		rec := &domain.ReviewRecord{
			Word:       entry.Word,
			OwnerID:    scope.OwnerID,
			ReviewedAt: s.now().UnixMilli(),
			WasCorrect: wasCorrect,
		}
		if err := s.reviewRepo.Append(ctx, rec); err != nil {
			return err
		}

		history, err := s.reviewRepo.History(ctx, scope, entry.Word)
		if err != nil {
			return err
		}

		mastered, streak := s.scheduler.CheckMastery(history)
		outcome.Streak = streak
		if mastered && !entry.Mastered {
			if err := s.vocabRepo.SetMastered(ctx, scope, entry.Word, true); err != nil {
				return err
			}
			outcome.Mastered = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Mastered {
		s.logger.Info("Word mastered",
			zap.String("word", word),
			ownerField(scope),
			zap.Int("streak", outcome.Streak),
		)
	}
	return outcome, nil
}

// WordHistory returns a word's review records, most recent first
func (s *ReviewService) WordHistory(ctx context.Context, scope domain.Scope, word string) ([]domain.ReviewRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.reviewRepo.History(ctx, scope, strings.TrimSpace(word))
}

// LearningHistory returns a page of reviewed words matching the filter
func (s *ReviewService) LearningHistory(ctx context.Context, scope domain.Scope, filter domain.HistoryFilter) (*domain.HistoryPage, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !filter.WordType.Valid() {
		return nil, domain.Validation("unknown wordType %q", filter.WordType)
	}
	if filter.StartDate != nil && filter.EndDate != nil && *filter.StartDate > *filter.EndDate {
		return nil, domain.Validation("startDate is after endDate")
	}
	filter = filter.Normalize()

	data, total, err := s.reviewRepo.HistoryPage(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryPage{Total: total, Data: data, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// DayRecords returns the answers given on one calendar day, oldest first
func (s *ReviewService) DayRecords(ctx context.Context, scope domain.Scope, date string) ([]domain.ReviewRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	day, err := domain.ParseDay(date, s.scheduler.Location())
	if err != nil {
		return nil, err
	}
	return s.reviewRepo.ListBetween(ctx, scope, day.StartMillis(), day.EndMillis())
}
