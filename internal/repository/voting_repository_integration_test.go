package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/repository"
	dbbuilder "github.com/godilite/voting-tool/pkg/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func setupRepo(t *testing.T) (*repository.VotingRepository, *sql.DB) {
	t.Helper()

	db := setupTestDB(t)
	repo := repository.NewVotingRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo, db
}

func mustSubmission(t *testing.T, voter string, items ...string) domain.Submission {
	t.Helper()
	s, err := domain.NewSubmission(voter, items)
	require.NoError(t, err)
	return s
}

func TestVotingRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	require.NoError(t, repo.CreateVoting(ctx, "Game Night"))
	require.NoError(t, repo.CreateVoting(ctx, "Movie Night"))

	t.Run("ListVotings", func(t *testing.T) {
		names, err := repo.ListVotings(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Game Night", "Movie Night"}, names)
	})

	t.Run("CreateVoting - collision", func(t *testing.T) {
		err := repo.CreateVoting(ctx, "Game Night")
		require.ErrorIs(t, err, domain.ErrNameCollision)
	})

	t.Run("ReadAll - empty", func(t *testing.T) {
		subs, err := repo.ReadAll(ctx, "Movie Night")
		require.NoError(t, err)
		require.NotNil(t, subs)
		require.Empty(t, subs)
	})

	t.Run("Append and ReadAll keep insertion order", func(t *testing.T) {
		alice := mustSubmission(t, "Alice", "Chess", "Go")
		bob := mustSubmission(t, "Bob", "Go", "", "Chess")
		require.NoError(t, repo.Append(ctx, "Game Night", alice))
		require.NoError(t, repo.Append(ctx, "Game Night", bob))
		require.NoError(t, repo.Append(ctx, "Game Night", alice))

		subs, err := repo.ReadAll(ctx, "Game Night")
		require.NoError(t, err)
		require.Equal(t, []domain.Submission{alice, bob, alice}, subs)

		other, err := repo.ReadAll(ctx, "Movie Night")
		require.NoError(t, err)
		require.Empty(t, other)
	})

	t.Run("Clear keeps the voting", func(t *testing.T) {
		require.NoError(t, repo.Clear(ctx, "Game Night"))
		require.NoError(t, repo.Clear(ctx, "Game Night"))

		subs, err := repo.ReadAll(ctx, "Game Night")
		require.NoError(t, err)
		require.Empty(t, subs)

		names, err := repo.ListVotings(ctx)
		require.NoError(t, err)
		require.Contains(t, names, "Game Night")
	})

	t.Run("Delete removes the voting", func(t *testing.T) {
		require.NoError(t, repo.Append(ctx, "Movie Night", mustSubmission(t, "Carol", "Alien")))
		require.NoError(t, repo.Delete(ctx, "Movie Night"))

		names, err := repo.ListVotings(ctx)
		require.NoError(t, err)
		require.NotContains(t, names, "Movie Night")

		require.ErrorIs(t, repo.Delete(ctx, "Movie Night"), domain.ErrNotFound)
		require.ErrorIs(t, repo.Clear(ctx, "Movie Night"), domain.ErrNotFound)
		require.ErrorIs(t, repo.Append(ctx, "Movie Night", mustSubmission(t, "Carol", "Alien")), domain.ErrNotFound)
		_, err = repo.ReadAll(ctx, "Movie Night")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete then recreate starts empty", func(t *testing.T) {
		require.NoError(t, repo.CreateVoting(ctx, "Movie Night"))

		subs, err := repo.ReadAll(ctx, "Movie Night")
		require.NoError(t, err)
		require.Empty(t, subs)
	})
}

func TestVotingRepository_MalformedRows(t *testing.T) {
	ctx := context.Background()
	repo, db := setupRepo(t)
	require.NoError(t, repo.CreateVoting(ctx, "Game Night"))

	t.Run("invalid json", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO submissions (voting_id, voter, items, created_at)
			SELECT id, 'Alice', 'not json', '' FROM votings WHERE name = 'Game Night'`)
		require.NoError(t, err)

		_, err = repo.ReadAll(ctx, "Game Night")
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("blank voter", func(t *testing.T) {
		require.NoError(t, repo.Clear(ctx, "Game Night"))
		_, err := db.Exec(`INSERT INTO submissions (voting_id, voter, items, created_at)
			SELECT id, '  ', '["Chess"]', '' FROM votings WHERE name = 'Game Night'`)
		require.NoError(t, err)

		_, err = repo.ReadAll(ctx, "Game Night")
		assert.ErrorIs(t, err, domain.ErrParse)
		assert.Contains(t, err.Error(), "submission")
	})
}

func TestVotingRepository_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	require.NoError(t, repo.CreateVoting(ctx, "Game Night"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := mustSubmission(t, fmt.Sprintf("voter-%d", i), "Chess")
			assert.NoError(t, repo.Append(ctx, "Game Night", sub))
		}(i)
	}
	wg.Wait()

	subs, err := repo.ReadAll(ctx, "Game Night")
	require.NoError(t, err)
	require.Len(t, subs, 20)
	for _, s := range subs {
		require.Equal(t, "Chess", s.Items[0])
	}
}
