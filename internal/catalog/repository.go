package catalog

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

var validConditions = map[string]bool{
	"Good":      true,
	"Like New":  true,
	"Excellent": true,
}

// Filter narrows ListPhones. Zero values mean "no restriction", except
// Sort which falls back to newest first.
type Filter struct {
	AvailableOnly bool
	DealsOnly     bool
	Brand         string
	MinPrice      int64
	MaxPrice      int64
	Sort          SortOrder
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", SortNewest:
		return SortNewest, nil
	case SortPriceAsc, SortPriceDesc:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer; one connection also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const phoneColumns = `id, name, brand, price, condition, description, images, storage, battery, available, is_deal, created_at`

func (r *Repository) ListPhones(ctx context.Context, f Filter) ([]domain.Phone, error) {
	var (
		where []string
		args  []any
	)
	if f.AvailableOnly {
		where = append(where, "available = 1")
	}
	if f.DealsOnly {
		where = append(where, "is_deal = 1")
	}
	if brand := strings.TrimSpace(f.Brand); brand != "" {
		where = append(where, "lower(brand) = lower(?)")
		args = append(args, brand)
	}
	if f.MinPrice > 0 {
		where = append(where, "price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "price <= ?")
		args = append(args, f.MaxPrice)
	}

	query := "SELECT " + phoneColumns + " FROM phones"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch f.Sort {
	case SortPriceAsc:
		query += " ORDER BY price ASC, created_at DESC"
	case SortPriceDesc:
		query += " ORDER BY price DESC, created_at DESC"
	default:
		query += " ORDER BY created_at DESC, id"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	phones := []domain.Phone{}
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return phones, nil
}

// Brands returns the distinct brand names, sorted.
func (r *Repository) Brands(ctx context.Context, availableOnly bool) ([]string, error) {
	query := "SELECT DISTINCT brand FROM phones"
	if availableOnly {
		query += " WHERE available = 1"
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	brands := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	sort.Strings(brands)
	return brands, nil
}

func (r *Repository) GetPhone(ctx context.Context, id domain.ProductID) (*domain.Phone, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+phoneColumns+" FROM phones WHERE id = ?", id.String())

	p, err := scanPhone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPhone inserts p or replaces the row with the same id. A missing id
// or creation time is filled in and written back to p.
func (r *Repository) UpsertPhone(ctx context.Context, p *domain.Phone) error {
	if err := validatePhone(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = domain.ProductID(uuid.NewString())
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Millisecond)

	images, err := json.Marshal(compact(p.Images))
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO phones (`+phoneColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			price = excluded.price,
			condition = excluded.condition,
			description = excluded.description,
			images = excluded.images,
			storage = excluded.storage,
			battery = excluded.battery,
			available = excluded.available,
			is_deal = excluded.is_deal
	`,
		p.ID.String(), p.Name, p.Brand, p.Price, p.Condition, p.Description,
		string(images), p.Storage, p.Battery, p.Available, p.IsDeal,
		p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert phone %s: %w", p.ID, err)
	}
	return nil
}

func validatePhone(p *domain.Phone) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidPhone)
	case strings.TrimSpace(p.Brand) == "":
		return fmt.Errorf("%w: brand is required", ErrInvalidPhone)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidPhone)
	case !validConditions[p.Condition]:
		return fmt.Errorf("%w: condition %q must be Good, Like New or Excellent", ErrInvalidPhone, p.Condition)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhone(s scanner) (domain.Phone, error) {
	var (
		p         domain.Phone
		id        string
		images    string
		createdAt int64
	)
	err := s.Scan(
		&id,
		&p.Name,
		&p.Brand,
		&p.Price,
		&p.Condition,
		&p.Description,
		&images,
		&p.Storage,
		&p.Battery,
		&p.Available,
		&p.IsDeal,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan phone: %w", err)
	}

	p.ID = domain.ProductID(id)
	p.Images = ParseImages(images)
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return p, nil
}
