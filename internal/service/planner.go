package service

import (
	"context"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository"
	"kumarajiva/internal/srs"

	"go.uber.org/zap"
)

// daysPageSize is the number of days shown per history page
const daysPageSize = 7

// PlannerService builds today's session and maintains the daily progress
// snapshot
type PlannerService struct {
	vocabRepo    repository.VocabularyRepository
	reviewRepo   repository.ReviewRepository
	progressRepo repository.ProgressRepository
	tx           repository.TxRunner
	scheduler    *srs.Scheduler
	logger       *zap.Logger
	now          clock
}

// NewPlannerService creates a new session planner
func NewPlannerService(
	vocabRepo repository.VocabularyRepository,
	reviewRepo repository.ReviewRepository,
	progressRepo repository.ProgressRepository,
	tx repository.TxRunner,
	scheduler *srs.Scheduler,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		vocabRepo:    vocabRepo,
		reviewRepo:   reviewRepo,
		progressRepo: progressRepo,
		tx:           tx,
		scheduler:    scheduler,
		logger:       logger,
		now:          time.Now,
	}
}

// Today returns the current calendar day
func (s *PlannerService) Today() domain.Day {
	return s.scheduler.Today(s.now())
}

// TodayWords returns new words, oldest first, followed by due words, most
// overdue first
func (s *PlannerService) TodayWords(ctx context.Context, scope domain.Scope) ([]domain.TodayWord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	cfg := s.scheduler.Config()

	fresh, err := s.vocabRepo.ListNew(ctx, scope, cfg.DailyNewWords)
	if err != nil {
		return nil, err
	}

	reviewed, err := s.vocabRepo.ListReviewed(ctx, scope)
	if err != nil {
		return nil, err
	}
	due := s.scheduler.SelectDue(reviewed, s.now())

	words := make([]domain.TodayWord, 0, len(fresh)+len(due))
	for _, e := range fresh {
		words = append(words, domain.TodayWord{VocabularyEntry: e, IsNew: true})
	}
	for _, e := range due {
		words = append(words, domain.TodayWord{VocabularyEntry: e.VocabularyEntry, ReviewCount: e.ReviewCount})
	}
	return words, nil
}

func (s *PlannerService) parseDate(date string) (domain.Day, error) {
	if date == "" {
		return s.Today(), nil
	}
	return domain.ParseDay(date, s.scheduler.Location())
}

// GetOrCreateProgress returns the snapshot for date, creating it from
// today's word list on first access. An empty date means today. Only today's
// snapshot is created; a missing snapshot for another day is not found.
func (s *PlannerService) GetOrCreateProgress(ctx context.Context, scope domain.Scope, date string) (*domain.ProgressSnapshot, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	snap, err := s.progressRepo.Get(ctx, scope, day.DateString())
	if err != nil || snap != nil {
		return snap, err
	}
	if day.DateString() != s.Today().DateString() {
		return nil, domain.NotFound("no progress for %s", day.DateString())
	}

	words, err := s.TodayWords(ctx, scope)
	if err != nil {
		return nil, err
	}

	// Concurrent callers may race here; the unique (date, owner) index keeps
	// the first insert and the re-read returns it.
	err = s.progressRepo.CreateIfAbsent(ctx, &domain.ProgressSnapshot{
		Date:       day.DateString(),
		OwnerID:    scope.OwnerID,
		TotalWords: len(words),
	})
	if err != nil {
		return nil, err
	}

	snap, err = s.progressRepo.Get(ctx, scope, day.DateString())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &domain.Error{Code: domain.CodeStorage, Message: "progress snapshot missing after insert"}
	}
	return snap, nil
}

// UpdateProgress validates and overwrites today's counters
func (s *PlannerService) UpdateProgress(ctx context.Context, scope domain.Scope, patch domain.ProgressPatch) (*domain.ProgressSnapshot, error) {
	snap, err := s.GetOrCreateProgress(ctx, scope, "")
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(snap.TotalWords); err != nil {
		return nil, err
	}
	return s.writeCounters(ctx, scope, snap, patch)
}

// ReconcileProgress recomputes today's completed and correct counters from
// the ledger instead of trusting the caller
func (s *PlannerService) ReconcileProgress(ctx context.Context, scope domain.Scope) (*domain.ProgressSnapshot, error) {
	snap, err := s.GetOrCreateProgress(ctx, scope, "")
	if err != nil {
		return nil, err
	}

	day := s.Today()
	tally, err := s.reviewRepo.TallyBetween(ctx, scope, day.StartMillis(), day.EndMillis())
	if err != nil {
		return nil, err
	}

	completed := min(tally.Reviewed, snap.TotalWords)
	patch := domain.ProgressPatch{
		Completed:    completed,
		Correct:      min(tally.Correct, completed),
		CurrentIndex: min(max(snap.CurrentIndex, completed), snap.TotalWords),
	}
	return s.writeCounters(ctx, scope, snap, patch)
}

func (s *PlannerService) writeCounters(ctx context.Context, scope domain.Scope, snap *domain.ProgressSnapshot, patch domain.ProgressPatch) (*domain.ProgressSnapshot, error) {
	found, err := s.progressRepo.UpdateCounters(ctx, scope, snap.Date, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NotFound("no progress for %s", snap.Date)
	}

	updated := *snap
	updated.CurrentIndex = patch.CurrentIndex
	updated.Completed = patch.Completed
	updated.Correct = patch.Correct
	return &updated, nil
}

// ResetToday deletes today's answers and snapshot in one transaction.
// Earlier days are untouched.
func (s *PlannerService) ResetToday(ctx context.Context, scope domain.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	day := s.Today()

	var deleted int64
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if deleted, err = s.reviewRepo.DeleteBetween(ctx, scope, day.StartMillis(), day.EndMillis()); err != nil {
			return err
		}
		return s.progressRepo.Delete(ctx, scope, day.DateString())
	})
	if err != nil {
		s.logger.Error("Failed to reset today", ownerField(scope), zap.Error(err))
		return err
	}

	s.logger.Info("Today reset",
		ownerField(scope),
		zap.String("date", day.DateString()),
		zap.Int64("deleted_records", deleted),
	)
	return nil
}

// DaysList returns a page of past session days, newest first, and the
// total number of pages
func (s *PlannerService) DaysList(ctx context.Context, scope domain.Scope, page int) ([]domain.ProgressSnapshot, int, error) {
	if err := scope.Validate(); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * daysPageSize
	days, err := s.progressRepo.ListDays(ctx, scope, daysPageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	// Calculate total pages
	totalDays, err := s.progressRepo.CountDays(ctx, scope)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (totalDays + daysPageSize - 1) / daysPageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return days, totalPages, nil
}
