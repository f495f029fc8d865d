package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Jonah-Douglas/Campfire/domain"
)

func newTestSessionRepo(t *testing.T) (domain.SessionRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewSessionRepository(db, testLogger()), db
}

func createSession(t *testing.T, repo domain.SessionRepository, userID uint, jti string) *domain.UserSession {
	t.Helper()
	session := &domain.UserSession{
		UserID:          userID,
		RefreshTokenJTI: jti,
		ExpiresAt:       time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), session))
	return session
}

func TestSessionRepository_CreateAndFindActive(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	session := createSession(t, repo, 7, "jti-1")
	assert.NotZero(t, session.ID)
	assert.True(t, session.IsActive)

	found, err := repo.FindActiveByJTIAndUser(ctx, "jti-1", 7)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)

	// The JTI alone is not enough; the owner must match.
	_, err = repo.FindActiveByJTIAndUser(ctx, "jti-1", 8)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_InvalidateStopsActiveLookup(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	session := createSession(t, repo, 7, "jti-1")
	require.NoError(t, repo.Invalidate(ctx, session))
	assert.False(t, session.IsActive)

	_, err := repo.FindActiveByJTIAndUser(ctx, "jti-1", 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The row itself survives for audit lookups.
	found, err := repo.FindByJTI(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestSessionRepository_ExpiredSessionNotActive(t *testing.T) {
	repo, db := newTestSessionRepo(t)
	ctx := context.Background()

	session := createSession(t, repo, 7, "jti-1")
	require.NoError(t, db.Model(&DBUserSession{}).
		Where("id = ?", session.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err := repo.FindActiveByJTIAndUser(ctx, "jti-1", 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_InvalidateByJTI(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	createSession(t, repo, 7, "jti-1")

	session, err := repo.InvalidateByJTI(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, session.IsActive)

	// Repeating is a no-op that still returns the record.
	again, err := repo.InvalidateByJTI(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, again.ID)
	assert.False(t, again.IsActive)

	_, err = repo.InvalidateByJTI(ctx, "missing-jti")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_InvalidateAllForUserExcludesJTI(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	createSession(t, repo, 7, "jti-keep")
	createSession(t, repo, 7, "jti-a")
	createSession(t, repo, 7, "jti-b")
	createSession(t, repo, 8, "jti-other-user")

	count, err := repo.InvalidateAllForUser(ctx, 7, "jti-keep")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The excluded session and the other user's session stay usable.
	_, err = repo.FindActiveByJTIAndUser(ctx, "jti-keep", 7)
	assert.NoError(t, err)
	_, err = repo.FindActiveByJTIAndUser(ctx, "jti-other-user", 8)
	assert.NoError(t, err)

	_, err = repo.FindActiveByJTIAndUser(ctx, "jti-a", 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = repo.FindActiveByJTIAndUser(ctx, "jti-b", 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_InvalidateAllForUserNoExclusion(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	createSession(t, repo, 7, "jti-a")
	createSession(t, repo, 7, "jti-b")

	count, err := repo.InvalidateAllForUser(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSessionRepository_CleanupRemovesDeadRows(t *testing.T) {
	repo, db := newTestSessionRepo(t)
	ctx := context.Background()

	revoked := createSession(t, repo, 7, "jti-revoked")
	require.NoError(t, repo.Invalidate(ctx, revoked))

	expired := createSession(t, repo, 7, "jti-expired")
	require.NoError(t, db.Model(&DBUserSession{}).
		Where("id = ?", expired.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	live := createSession(t, repo, 7, "jti-live")

	deleted, err := repo.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []DBUserSession
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.ID, remaining[0].ID)
}
