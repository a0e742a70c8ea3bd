package settingsstore

import (
	"context"
	"log"
	"math/rand/v2"

	"github.com/mrlokans/readworld/internal/entities"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

var Quotes = []Quote{
	{Text: "A reader lives a thousand lives before he dies.", Author: "George R.R. Martin"},
	{Text: "Books are a uniquely portable magic.", Author: "Stephen King"},
	{Text: "There is no friend as loyal as a book.", Author: "Ernest Hemingway"},
	{Text: "Reading is essential for those who seek to rise above the ordinary.", Author: "Jim Rohn"},
	{Text: "A book is a dream that you hold in your hand.", Author: "Neil Gaiman"},
	{Text: "The reading of all good books is like a conversation with the finest minds of past centuries.", Author: "René Descartes"},
	{Text: "You can never get a cup of tea large enough or a book long enough to suit me.", Author: "C.S. Lewis"},
}

// quoteDateLayout renders a local calendar day, e.g. "Mon May 20 2024".
const quoteDateLayout = "Mon Jan 02 2006"

func randomIndex(n int) int { return rand.IntN(n) }

// DailyQuote returns a random quote the first time it is called on a local calendar
// day. Later calls that day, and every call while the preference is off, report false.
func (s *SettingsStore) DailyQuote(ctx context.Context) (Quote, bool) {
	if !s.Preferences().ShowDailyQuote {
		return Quote{}, false
	}

	today := s.store.Now().In(s.loc).Format(quoteDateLayout)
	if s.stored(ctx, entities.RecordKeyLastQuoteDate) == today {
		return Quote{}, false
	}

	quote := Quotes[s.pick(len(Quotes))]
	if err := s.records.Set(ctx, entities.RecordKeyLastQuoteDate, today); err != nil {
		log.Printf("Settings: failed to remember quote date: %v", err)
	}
	return quote, true
}
