// Package moods owns the mood-log write path: validation, the rolling 24h
// rate limit, and the delete-then-insert swap that keeps at most one active
// log per user.
package moods

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mood-analytics-service/analytics"
	"mood-analytics-service/models"
)

// MaxContentLength caps the optional free-text content, in characters.
const MaxContentLength = 350

const rateLimitWindow = 24 * time.Hour

// Store is the mood-log persistence the guard needs.
type Store interface {
	// UserMoodLogsSince returns a user's logs with created_at >= since,
	// ordered ascending.
	UserMoodLogsSince(ctx context.Context, userID string, since time.Time) ([]models.MoodLog, error)
	// SwapUserMoodLog deletes the user's logs with created_at >= since
	// and inserts log, all in one transaction.
	SwapUserMoodLog(ctx context.Context, userID string, since time.Time, log *models.MoodLog) error
	// LatestUserMoodLog returns the user's newest log, or a
	// NotFoundError when the user has never logged.
	LatestUserMoodLog(ctx context.Context, userID string) (*models.MoodLog, error)
}

// CacheInvalidator drops cached views by tag after a successful write.
type CacheInvalidator interface {
	InvalidateTag(ctx context.Context, tag string) error
}

// EmojiResolver maps a mood id to its display glyph.
type EmojiResolver interface {
	Resolve(moodID string) (string, bool)
}

// Guard enforces the mood-log write rules. MaxDailyUpdates submissions are
// allowed per rolling 24h window, tracked by the spam count carried on each
// log; the default of one update per day means any log inside the window
// blocks the next.
type Guard struct {
	store           Store
	cache           CacheInvalidator // nil disables invalidation
	emoji           EmojiResolver
	maxDailyUpdates int
	now             func() time.Time
}

func NewGuard(store Store, cache CacheInvalidator, emoji EmojiResolver, maxDailyUpdates int) *Guard {
	if maxDailyUpdates < 1 {
		maxDailyUpdates = 1
	}
	return &Guard{store: store, cache: cache, emoji: emoji, maxDailyUpdates: maxDailyUpdates, now: time.Now}
}

// SubmitResult is the stored log plus bookkeeping for the caller.
type SubmitResult struct {
	Log              models.MoodLog `json:"log"`
	Emoji            string         `json:"emoji"`
	RemainingUpdates int            `json:"remaining_updates"`
}

// Submit validates and stores one mood observation. Preconditions are
// checked in order: content length, country present, caller authenticated.
// The swap (delete window rows, insert the new one) is transactional, so a
// failed insert cannot leave the user without a log.
func (g *Guard) Submit(ctx context.Context, userID, moodID, content string, location models.Location) (*SubmitResult, error) {
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, &models.ValidationError{Message: "mood content must be at most 350 characters"}
	}
	if location.Country == "" {
		return nil, &models.ValidationError{Message: "location country is required"}
	}
	if userID == "" {
		return nil, &models.UnauthenticatedError{Message: "you must be logged in to log your mood"}
	}
	if moodID == "" {
		return nil, &models.ValidationError{Message: "mood id is required"}
	}

	now := g.now()
	windowStart := now.Add(-rateLimitWindow)

	previous, err := g.store.UserMoodLogsSince(ctx, userID, windowStart)
	if err != nil {
		return nil, err
	}

	spamCount := 0
	if len(previous) > 0 {
		spamCount = previous[len(previous)-1].SpamCount
	}
	if spamCount >= g.maxDailyUpdates {
		resetAt := previous[0].CreatedAt.Add(rateLimitWindow)
		if now.Before(resetAt) {
			return nil, &models.RateLimitError{ResetAt: resetAt, Limit: g.maxDailyUpdates}
		}
		// Window elapsed: the swap below clears the stale rows.
		spamCount = 0
	}

	entry := &models.MoodLog{
		ID:          uuid.NewString(),
		MoodID:      moodID,
		MoodContent: content,
		UserID:      userID,
		SpamCount:   spamCount + 1,
		Location:    location,
		CreatedAt:   now,
	}
	if err := g.store.SwapUserMoodLog(ctx, userID, windowStart, entry); err != nil {
		return nil, err
	}

	// The 1hr global view folds live logs; drop it so the next read
	// sees this event. Failure here is non-fatal: TTL expiry catches up.
	if g.cache != nil {
		if err := g.cache.InvalidateTag(ctx, analytics.TagGlobalMoodsHour); err != nil {
			log.Printf("Warning: failed to invalidate %s: %v", analytics.TagGlobalMoodsHour, err)
		}
	}

	glyph, _ := g.emoji.Resolve(entry.MoodID)
	return &SubmitResult{
		Log:              *entry,
		Emoji:            glyph,
		RemainingUpdates: g.maxDailyUpdates - entry.SpamCount,
	}, nil
}

// LatestResult is a user's most recent log with resolved emoji.
type LatestResult struct {
	Log              models.MoodLog `json:"log"`
	Emoji            string         `json:"emoji"`
	RemainingUpdates int            `json:"remaining_updates"`
}

// Latest returns the caller's most recent mood log regardless of age.
func (g *Guard) Latest(ctx context.Context, userID string) (*LatestResult, error) {
	if userID == "" {
		return nil, &models.UnauthenticatedError{Message: "you must be logged in to view your mood"}
	}

	entry, err := g.store.LatestUserMoodLog(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := g.maxDailyUpdates - entry.SpamCount
	if g.now().Sub(entry.CreatedAt) >= rateLimitWindow {
		remaining = g.maxDailyUpdates
	}
	if remaining < 0 {
		remaining = 0
	}

	glyph, _ := g.emoji.Resolve(entry.MoodID)
	return &LatestResult{Log: *entry, Emoji: glyph, RemainingUpdates: remaining}, nil
}
