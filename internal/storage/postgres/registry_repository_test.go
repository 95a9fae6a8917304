package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/MeshanKhosla/convex-queue/internal/testutil"
	"github.com/google/uuid"
)

func TestRegistryRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewRegistryRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateQueue and GetQueue round-trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		queue := domain.Queue{
			ID:                 uuid.NewString(),
			Name:               "Front Desk",
			Description:        "walk-ins",
			IsActive:           true,
			MaxConcurrentItems: 3,
			CreatedAt:          time.Now().UTC().Truncate(time.Microsecond),
		}
		if err := repo.CreateQueue(ctx, queue); err != nil {
			t.Fatalf("create queue: %v", err)
		}

		got, err := repo.GetQueue(ctx, queue.ID)
		if err != nil {
			t.Fatalf("get queue: %v", err)
		}
		if got.Name != queue.Name || got.Description != queue.Description || got.MaxConcurrentItems != 3 || !got.IsActive {
			t.Fatalf("unexpected queue: %+v", got)
		}

		missingID := "00000000-0000-0000-0000-000000000001"
		if _, err := repo.GetQueue(ctx, missingID); err != domain.ErrQueueNotFound {
			t.Fatalf("expected ErrQueueNotFound, got %v", err)
		}
		if _, err := repo.GetQueue(ctx, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("ListActiveQueues keeps creation order and skips inactive", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		base := time.Now().UTC().Truncate(time.Microsecond)
		ids := make([]string, 3)
		for i, name := range []string{"first", "second", "third"} {
			q := domain.Queue{
				ID:        uuid.NewString(),
				Name:      name,
				IsActive:  true,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}
			if err := repo.CreateQueue(ctx, q); err != nil {
				t.Fatalf("create %s: %v", name, err)
			}
			ids[i] = q.ID
		}
		if err := repo.SetQueueActive(ctx, ids[1], false); err != nil {
			t.Fatalf("deactivate: %v", err)
		}

		queues, err := repo.ListActiveQueues(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(queues) != 2 || queues[0].ID != ids[0] || queues[1].ID != ids[2] {
			t.Fatalf("unexpected active queues: %+v", queues)
		}
	})

	t.Run("SetQueueActive reports missing queues", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		missingID := "00000000-0000-0000-0000-000000000001"
		if err := repo.SetQueueActive(ctx, missingID, false); err != domain.ErrQueueNotFound {
			t.Fatalf("expected ErrQueueNotFound, got %v", err)
		}
		if err := repo.SetQueueActive(ctx, "not-a-uuid", false); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}
