package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rogerio-castellano/catalog-service/internal/models"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
)

func TestInMemoryProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := repo.NewInMemoryProductRepository()

	created, err := r.Create(ctx, models.Product{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 9.99, ImageURL: "http://x/img.png"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected id 1, got %d", created.ID)
	}

	got, err := r.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Errorf("expected %+v, got %+v", created, got)
	}

	updated, err := r.Update(ctx, created.ID, models.ProductUpdate{Name: "Cup", Brand: "Acme", Category: "Kitchen", Price: 5})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Cup" || updated.ImageURL != "http://x/img.png" {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := r.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("expected no products after delete, got %d", len(all))
	}
}

func TestInMemoryProductRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	r := repo.NewInMemoryProductRepository()

	if _, err := r.GetByID(ctx, 42); !errors.Is(err, repo.ErrProductNotFound) {
		t.Errorf("get: expected ErrProductNotFound, got %v", err)
	}
	if _, err := r.Update(ctx, 42, models.ProductUpdate{Name: "x"}); !errors.Is(err, repo.ErrProductNotFound) {
		t.Errorf("update: expected ErrProductNotFound, got %v", err)
	}
	if err := r.Delete(ctx, 42); !errors.Is(err, repo.ErrProductNotFound) {
		t.Errorf("delete: expected ErrProductNotFound, got %v", err)
	}
}

func TestInMemoryProductRepository_GetAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := repo.NewInMemoryProductRepository()
	r.Create(ctx, models.Product{Name: "Mug"})

	all, _ := r.GetAll(ctx)
	all[0].Name = "changed"

	again, _ := r.GetAll(ctx)
	if again[0].Name != "Mug" {
		t.Errorf("caller mutation leaked into repository: %q", again[0].Name)
	}
}

func TestInMemoryProductRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	r := repo.NewInMemoryProductRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Create(ctx, models.Product{Name: "p"})
		}()
	}
	wg.Wait()

	all, _ := r.GetAll(ctx)
	if len(all) != 50 {
		t.Fatalf("expected 50 products, got %d", len(all))
	}
	seen := map[int]bool{}
	for _, p := range all {
		if seen[p.ID] {
			t.Fatalf("duplicate id %d", p.ID)
		}
		seen[p.ID] = true
	}
}
