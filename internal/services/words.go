package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/models"
	"wordvault-backend/internal/repository"
)

// WordService enforces the collection-level invariants on top of the raw
// fetch/save primitives: unique ids, per-date sequential numbering, and
// renumbering after delete.
type WordService struct {
	docs  *repository.DocumentRepo
	cache *cache.Store
}

func NewWordService(docs *repository.DocumentRepo, cacheStore *cache.Store) *WordService {
	return &WordService{docs: docs, cache: cacheStore}
}

// AddWord appends a new word numbered (count of its date) + 1 and saves the
// full collection. The created word is returned even when the remote save
// failed; the local snapshot write is the only guarantee.
func (s *WordService) AddWord(ctx context.Context, req models.AddWordRequest) (*models.Word, error) {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.English) == "" {
		fieldErrors["english"] = "English text is required"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		fieldErrors["date"] = "Date must be YYYY-MM-DD"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	words := s.docs.FetchAll(ctx)

	now := time.Now().UTC()
	word := models.Word{
		ID:             uuid.New().String(),
		Date:           req.Date,
		WordNumber:     countForDate(words, req.Date) + 1,
		English:        strings.TrimSpace(req.English),
		IPA:            strings.TrimSpace(req.IPA),
		Context:        strings.TrimSpace(req.Context),
		Meaning:        strings.TrimSpace(req.Meaning),
		BanglaMeanings: models.NormalizeList(req.BanglaMeanings),
		Synonyms:       models.NormalizeList(req.Synonyms),
		Antonyms:       models.NormalizeList(req.Antonyms),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	words = append(words, word)
	s.docs.SaveAll(ctx, words)

	return &word, nil
}

// UpdateWord merges the patch over the stored word. Fields absent from the
// patch are left untouched; id, date and createdAt are immutable.
func (s *WordService) UpdateWord(ctx context.Context, id string, patch models.UpdateWordRequest) (*models.Word, error) {
	words := s.docs.FetchAll(ctx)

	idx := indexOf(words, id)
	if idx < 0 {
		return nil, &NotFoundError{Message: "Word not found"}
	}

	word := &words[idx]
	if patch.English != nil {
		if strings.TrimSpace(*patch.English) == "" {
			return nil, &ValidationError{Fields: map[string]string{"english": "English text is required"}}
		}
		word.English = strings.TrimSpace(*patch.English)
	}
	if patch.IPA != nil {
		word.IPA = strings.TrimSpace(*patch.IPA)
	}
	if patch.Context != nil {
		word.Context = strings.TrimSpace(*patch.Context)
	}
	if patch.Meaning != nil {
		word.Meaning = strings.TrimSpace(*patch.Meaning)
	}
	if patch.BanglaMeanings != nil {
		word.BanglaMeanings = models.NormalizeList(*patch.BanglaMeanings)
	}
	if patch.Synonyms != nil {
		word.Synonyms = models.NormalizeList(*patch.Synonyms)
	}
	if patch.Antonyms != nil {
		word.Antonyms = models.NormalizeList(*patch.Antonyms)
	}
	word.UpdatedAt = time.Now().UTC()

	updated := *word
	s.docs.SaveAll(ctx, words)

	return &updated, nil
}

// DeleteWord removes the word and renumbers the remaining words of its date
// to a contiguous 1..k sequence in the collection's current order.
func (s *WordService) DeleteWord(ctx context.Context, id string) error {
	words := s.docs.FetchAll(ctx)

	idx := indexOf(words, id)
	if idx < 0 {
		return &NotFoundError{Message: "Word not found"}
	}

	date := words[idx].Date
	words = append(words[:idx], words[idx+1:]...)

	n := 0
	for i := range words {
		if words[i].Date == date {
			n++
			words[i].WordNumber = n
		}
	}

	s.docs.SaveAll(ctx, words)
	return nil
}

// WordsByDate returns the words of a date in collection order, with the
// device-local learned flag attached.
func (s *WordService) WordsByDate(ctx context.Context, date string) []models.Word {
	learned := s.cache.LearnedSet()

	var out []models.Word
	for _, w := range s.docs.FetchAll(ctx) {
		if w.Date == date {
			w.IsLearned = learned[w.ID]
			out = append(out, w)
		}
	}
	if out == nil {
		out = []models.Word{}
	}
	return out
}

func (s *WordService) CountForDate(ctx context.Context, date string) int {
	return countForDate(s.docs.FetchAll(ctx), date)
}

func (s *WordService) TotalCount(ctx context.Context) int {
	return len(s.docs.FetchAll(ctx))
}

// IsDailyLimitReached is a policy check only; it is re-checked before adds,
// not atomically enforced.
func (s *WordService) IsDailyLimitReached(ctx context.Context, date string, limit int) bool {
	return s.CountForDate(ctx, date) >= limit
}

func (s *WordService) MarkLearned(id string) {
	s.cache.MarkLearned(id)
}

func (s *WordService) UnmarkLearned(id string) {
	s.cache.UnmarkLearned(id)
}

func countForDate(words []models.Word, date string) int {
	n := 0
	for _, w := range words {
		if w.Date == date {
			n++
		}
	}
	return n
}

func indexOf(words []models.Word, id string) int {
	for i := range words {
		if words[i].ID == id {
			return i
		}
	}
	return -1
}
