package reconcile

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/starford/luach/internal/models"
)

// DateResolver assigns a Gregorian date (YYYY-MM-DD) to a catalog entry being
// added to the store.
type DateResolver func(entry models.CatalogEntry) string

// RandomDates returns the placeholder resolver used until Hebrew calendar
// conversion exists: a random month and a day in 1..28 of the current year.
// A nil rng is seeded from the clock.
func RandomDates(rng *rand.Rand, now func() time.Time) DateResolver {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	var mu sync.Mutex
	return func(models.CatalogEntry) string {
		mu.Lock()
		month := time.Month(rng.IntN(12) + 1)
		day := rng.IntN(28) + 1
		mu.Unlock()
		return time.Date(now().Year(), month, day, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
	}
}

// FixedDate resolves every entry to the same date.
func FixedDate(date string) DateResolver {
	return func(models.CatalogEntry) string { return date }
}
