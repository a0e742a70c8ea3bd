package state

import (
	"time"

	"github.com/mrlokans/readworld/internal/entities"
)

// MonthKey formats t as the "YYYY-MM" key the monthly counters are tagged with. Months are UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Rollover resets each monthly counter whose month key differs from monthKey and
// retags it. Counters are handled independently. Reports whether anything changed.
// Applying it twice with the same key is the same as applying it once.
func Rollover(s *entities.UserState, monthKey string) bool {
	changed := false
	if s.SavedMonthKey != monthKey {
		s.SavedMonthKey = monthKey
		s.SavedThisMonth = 0
		changed = true
	}
	if s.DownloadMonthKey != monthKey {
		s.DownloadMonthKey = monthKey
		s.DownloadsThisMonth = 0
		changed = true
	}
	return changed
}
