package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	database, err := db.OpenDB(filepath.Join(dir, "concurrent_test.db"))
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrentAccess_ReadDuringWrite mirrors a scorer fanning out reads
// while a seed or import is writing.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	store := NewStore(database)

	proj := testutil.NewTestProject("ReadWrite")
	require.NoError(t, store.Projects.Create(ctx, proj))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			item := testutil.NewTestWorkItem(domain.KindTask, proj.ID)
			if err := store.WorkItems.Create(ctx, item); err != nil {
				t.Errorf("writer: create task %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				items, err := store.WorkItems.ListByProject(ctx, proj.ID, domain.KindTask)
				if err != nil {
					t.Errorf("reader %d: list tasks: %v", reader, err)
					return
				}
				for _, item := range items {
					if item.ID == "" || item.Project == nil {
						t.Errorf("reader %d: got half-populated work item", reader)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	items, err := store.WorkItems.ListByProject(ctx, proj.ID, domain.KindTask)
	require.NoError(t, err)
	assert.Len(t, items, 20)
}

func TestConcurrentAccess_ParallelCollections(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	store := NewStore(database)

	const projectCount = 10
	for i := 0; i < projectCount; i++ {
		proj := testutil.NewTestProject(fmt.Sprintf("Project-%d", i))
		require.NoError(t, store.Projects.Create(ctx, proj))
		require.NoError(t, store.WorkItems.Create(ctx, testutil.NewTestWorkItem(domain.KindRFI, proj.ID)))
		require.NoError(t, store.Quotes.Create(ctx, testutil.NewTestQuote(domain.QuoteSent, 1000)))
	}

	var wg sync.WaitGroup
	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()

			projects, err := store.Projects.List(ctx, ProjectFilter{})
			if err != nil || len(projects) != projectCount {
				t.Errorf("reader %d: projects=%d err=%v", reader, len(projects), err)
			}
			rfis, err := store.WorkItems.List(ctx, WorkItemFilter{Kinds: []domain.WorkItemKind{domain.KindRFI}})
			if err != nil || len(rfis) != projectCount {
				t.Errorf("reader %d: rfis=%d err=%v", reader, len(rfis), err)
			}
			quotes, err := store.Quotes.List(ctx, QuoteFilter{})
			if err != nil || len(quotes) != projectCount {
				t.Errorf("reader %d: quotes=%d err=%v", reader, len(quotes), err)
			}
		}(r)
	}
	wg.Wait()
}
