package services

import (
	"time"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/models"
)

const dateLayout = "2006-01-02"

type StreakService struct {
	cache *cache.Store
}

func NewStreakService(cacheStore *cache.Store) *StreakService {
	return &StreakService{cache: cacheStore}
}

// AdvanceStreak applies one day of activity: same day is a no-op, a
// consecutive day increments the count, anything else resets it to 1.
func AdvanceStreak(streak models.Streak, today time.Time) models.Streak {
	date := today.Format(dateLayout)
	if streak.LastActiveDate == date {
		return streak
	}

	yesterday := today.AddDate(0, 0, -1).Format(dateLayout)
	if streak.LastActiveDate == yesterday {
		streak.Count++
	} else {
		streak.Count = 1
	}
	streak.LastActiveDate = date
	return streak
}

func (s *StreakService) Current() models.Streak {
	return s.cache.Streak()
}

// Bump advances the streak for today and persists it. Called once per
// application load.
func (s *StreakService) Bump() models.Streak {
	streak := AdvanceStreak(s.cache.Streak(), time.Now())
	s.cache.SetStreak(streak)
	return streak
}
