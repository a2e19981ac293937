package service

import (
	"context"
	"math/rand"
	"strings"

	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository"

	"go.uber.org/zap"
)

// distractorCount is the number of wrong options in a quiz
const distractorCount = 3

// QuizService builds multiple-choice questions
type QuizService struct {
	vocabRepo repository.VocabularyRepository
	logger    *zap.Logger
	shuffle   func(n int, swap func(i, j int))
}

// NewQuizService creates a new quiz service
func NewQuizService(vocabRepo repository.VocabularyRepository, logger *zap.Logger) *QuizService {
	return &QuizService{
		vocabRepo: vocabRepo,
		logger:    logger,
		shuffle:   rand.Shuffle,
	}
}

// Generate returns a quiz for word with its first meaning among three
// meanings of other random words. The lookup ignores case.
func (s *QuizService) Generate(ctx context.Context, scope domain.Scope, word string) (*domain.Quiz, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, domain.Validation("word cannot be empty")
	}

	target, err := s.vocabRepo.FindFold(ctx, scope, word)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.NotFound("word %q not found", word)
	}

	answer := target.FirstDefinition()
	if answer.Meaning == "" {
		return nil, domain.Validation("word %q has no meaning", target.Word)
	}

	others, err := s.vocabRepo.ListOthers(ctx, scope, target.Word)
	if err != nil {
		return nil, err
	}
	s.shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	// Meanings must be unique across options or the answer becomes ambiguous.
	seen := map[string]bool{answer.Meaning: true}
	options := []domain.QuizOption{{Definition: answer.Meaning, PartOfSpeech: answer.PartOfSpeech}}
	for _, o := range others {
		if len(options) > distractorCount {
			break
		}
		d := o.FirstDefinition()
		if d.Meaning == "" || seen[d.Meaning] {
			continue
		}
		seen[d.Meaning] = true
		options = append(options, domain.QuizOption{Definition: d.Meaning, PartOfSpeech: d.PartOfSpeech})
	}
	if len(options) <= distractorCount {
		s.logger.Warn("Not enough distractors",
			zap.String("word", target.Word),
			ownerField(scope),
			zap.Int("available", len(options)-1),
		)
		return nil, domain.InsufficientData("need %d other words with distinct meanings, have %d", distractorCount, len(options)-1)
	}
	s.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return &domain.Quiz{
		Word:          target.Word,
		Phonetic:      target.Pronunciation.Phonetic(),
		Audio:         target.AudioURL,
		Definitions:   target.Definitions,
		MemoryMethod:  target.MemoryMethod,
		CorrectAnswer: answer.Meaning,
		Options:       options,
	}, nil
}
