package service

import (
	"context"
	"time"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository"
	"kumarajiva/internal/srs"

	"go.uber.org/zap"
)

// contributionDays is the length of the contribution series
const contributionDays = 180

// StatsService handles statistics
type StatsService struct {
	vocabRepo    repository.VocabularyRepository
	progressRepo repository.ProgressRepository
	scheduler    *srs.Scheduler
	logger       *zap.Logger
	now          clock
}

// NewStatsService creates a new stats service
func NewStatsService(
	vocabRepo repository.VocabularyRepository,
	progressRepo repository.ProgressRepository,
	scheduler *srs.Scheduler,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		vocabRepo:    vocabRepo,
		progressRepo: progressRepo,
		scheduler:    scheduler,
		logger:       logger,
		now:          time.Now,
	}
}

// CurrentStats returns real-time vocabulary totals.
//
// ReviewWordsCount is learned minus mastered minus the daily new-word
// allowance. It is a coarse estimate, not the due count.
func (s *StatsService) CurrentStats(ctx context.Context, scope domain.Scope) (*domain.Stats, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	counts, err := s.vocabRepo.Counts(ctx, scope)
	if err != nil {
		s.logger.Error("Failed to count vocabulary", ownerField(scope), zap.Error(err))
		return nil, err
	}

	dailyNew := s.scheduler.Config().DailyNewWords
	return &domain.Stats{
		TotalWords:         counts.Total,
		NewWordsCount:      min(dailyNew, counts.Unreviewed),
		ReviewWordsCount:   max(0, counts.Learned-(counts.Mastered+dailyNew)),
		MasteredWordsCount: counts.Mastered,
		TotalReviews:       counts.Reviews,
	}, nil
}

// Contribution returns one point per day for the last 180 days ending
// today, oldest first. Days without a snapshot are zero.
func (s *StatsService) Contribution(ctx context.Context, scope domain.Scope) ([]domain.DailyContribution, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	today := s.scheduler.Today(s.now())
	first := today.AddDays(-(contributionDays - 1))

	snaps, err := s.progressRepo.ListRange(ctx, scope, first.DateString(), today.DateString())
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]domain.ProgressSnapshot, len(snaps))
	for _, snap := range snaps {
		byDate[snap.Date] = snap
	}

	series := make([]domain.DailyContribution, 0, contributionDays)
	for i := 0; i < contributionDays; i++ {
		date := first.AddDays(i).DateString()
		snap := byDate[date]
		series = append(series, domain.DailyContribution{
			Date:       date,
			TotalWords: snap.TotalWords,
			Completed:  snap.Completed,
			Correct:    snap.Correct,
		})
	}
	return series, nil
}
