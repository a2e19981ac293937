package domain

// Stats is the real-time overview of a learner's vocabulary.
type Stats struct {
	TotalWords         int `json:"total_words"`
	NewWordsCount      int `json:"new_words_count"`
	ReviewWordsCount   int `json:"review_words_count"`
	MasteredWordsCount int `json:"mastered_words_count"`
	TotalReviews       int `json:"total_reviews"`
}

// VocabularyCounts are the raw counts Stats is derived from.
type VocabularyCounts struct {
	Total      int `db:"total"`
	Mastered   int `db:"mastered"`
	Unreviewed int `db:"unreviewed"`
	Learned    int `db:"learned"`
	Reviews    int `db:"reviews"`
}
