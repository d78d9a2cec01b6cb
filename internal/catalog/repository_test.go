package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func seededRepo(t *testing.T) *Repository {
	t.Helper()
	repo := setupTestDB(t)

	f, err := os.Open("testdata/phones.yaml")
	require.NoError(t, err)
	defer f.Close()

	phones, err := LoadSeed(f)
	require.NoError(t, err)
	for i := range phones {
		require.NoError(t, repo.UpsertPhone(context.Background(), &phones[i]))
	}
	return repo
}

func ids(phones []domain.Phone) []domain.ProductID {
	out := make([]domain.ProductID, 0, len(phones))
	for _, p := range phones {
		out = append(out, p.ID)
	}
	return out
}

func TestRunMigrations_Twice(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations())
}

func TestListPhones_Filters(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter Filter
		want   []domain.ProductID
	}{
		{
			name:   "everything newest first",
			filter: Filter{},
			want:   []domain.ProductID{"iphone-12", "galaxy-s21", "pixel-6", "iphone-11"},
		},
		{
			name:   "available only",
			filter: Filter{AvailableOnly: true},
			want:   []domain.ProductID{"iphone-12", "galaxy-s21", "iphone-11"},
		},
		{
			name:   "deals only",
			filter: Filter{DealsOnly: true},
			want:   []domain.ProductID{"iphone-12", "pixel-6"},
		},
		{
			name:   "brand is case insensitive",
			filter: Filter{Brand: "APPLE"},
			want:   []domain.ProductID{"iphone-12", "iphone-11"},
		},
		{
			name:   "price range",
			filter: Filter{MinPrice: 20000, MaxPrice: 30000},
			want:   []domain.ProductID{"galaxy-s21", "iphone-11"},
		},
		{
			name:   "price ascending",
			filter: Filter{Sort: SortPriceAsc},
			want:   []domain.ProductID{"pixel-6", "iphone-11", "galaxy-s21", "iphone-12"},
		},
		{
			name:   "price descending, available",
			filter: Filter{AvailableOnly: true, Sort: SortPriceDesc},
			want:   []domain.ProductID{"iphone-12", "galaxy-s21", "iphone-11"},
		},
		{
			name:   "no match",
			filter: Filter{Brand: "Nokia"},
			want:   []domain.ProductID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phones, err := repo.ListPhones(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(phones))
		})
	}
}

func TestListPhones_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListPhones(ctx, Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBrands(t *testing.T) {
	repo := seededRepo(t)

	brands, err := repo.Brands(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Samsung"}, brands)

	brands, err = repo.Brands(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Google", "Samsung"}, brands)
}

func TestGetPhone(t *testing.T) {
	repo := seededRepo(t)

	p, err := repo.GetPhone(context.Background(), "iphone-12")
	require.NoError(t, err)
	assert.Equal(t, "iPhone 12", p.Name)
	assert.Equal(t, int64(32000), p.Price)
	assert.Equal(t, "89%", p.Battery)
	assert.True(t, p.Available)
	assert.True(t, p.IsDeal)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), p.CreatedAt)
}

func TestGetPhone_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetPhone(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPhoneNotFound)
	assert.Nil(t, p)
}

func TestUpsertPhone_AssignsIDAndUpdates(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	p := &domain.Phone{Name: "Redmi Note 10", Brand: "Xiaomi", Price: 9000, Condition: "Good"}
	require.NoError(t, repo.UpsertPhone(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.Equal(t, fixed, p.CreatedAt)

	p.Price = 8500
	p.Available = true
	require.NoError(t, repo.UpsertPhone(ctx, p))

	got, err := repo.GetPhone(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8500), got.Price)
	assert.True(t, got.Available)
	assert.Equal(t, []string{}, got.Images)
}

func TestUpsertPhone_Invalid(t *testing.T) {
	repo := setupTestDB(t)

	tests := []struct {
		name  string
		phone domain.Phone
	}{
		{name: "no name", phone: domain.Phone{Brand: "Apple", Price: 1, Condition: "Good"}},
		{name: "no brand", phone: domain.Phone{Name: "X", Price: 1, Condition: "Good"}},
		{name: "zero price", phone: domain.Phone{Name: "X", Brand: "Apple", Condition: "Good"}},
		{name: "bad condition", phone: domain.Phone{Name: "X", Brand: "Apple", Price: 1, Condition: "Broken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpsertPhone(context.Background(), &tt.phone)
			assert.ErrorIs(t, err, ErrInvalidPhone)
		})
	}
}

func TestRepository_LegacyCommaImages(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO phones (id, name, brand, price, condition, images, created_at)
		VALUES ('legacy', 'Moto G', 'Motorola', 7000, 'Good', 'a.jpg, b.jpg,,', 0)`)
	require.NoError(t, err)

	p, err := repo.GetPhone(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
}
