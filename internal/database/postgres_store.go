package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lista-zakupow/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
)

type PostgresStore struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
	ttl   time.Duration
}

func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration, clock clockwork.Clock) *PostgresStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PostgresStore{pool: pool, clock: clock, ttl: ttl}
}

func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}

// ExecTx runs fn in a transaction and rolls back when fn fails.
func (s *PostgresStore) ExecTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) now() int64 {
	return models.Millis(s.clock.Now())
}

func (s *PostgresStore) cutoff() int64 {
	return s.now() - s.ttl.Milliseconds()
}

func marshalItems(items []models.ShoppingItem) ([]byte, error) {
	raw, err := json.Marshal(nonNilItems(items))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	return raw, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*models.ShoppingList, error) {
	var list models.ShoppingList
	var rawItems []byte
	if err := row.Scan(&list.ID, &rawItems, &list.CreatedAt, &list.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawItems, &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items of list %s: %w", list.ID, err)
	}
	return &list, nil
}

func scanShare(row rowScanner) (*models.SharedList, error) {
	var shared models.SharedList
	var rawItems, rawRecipes []byte
	err := row.Scan(
		&rawItems,
		&rawRecipes,
		&shared.Metadata.CreatedAt,
		&shared.Metadata.UpdatedAt,
		&shared.ViewsCount,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawItems, &shared.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared items: %w", err)
	}
	if err := json.Unmarshal(rawRecipes, &shared.Recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared recipes: %w", err)
	}
	return &shared, nil
}

func (s *PostgresStore) CreateList(ctx context.Context, id string, items []models.ShoppingItem) (*models.ShoppingList, error) {
	rawItems, err := marshalItems(items)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO shopping_lists (id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id, items, created_at, updated_at
	`
	return scanList(s.pool.QueryRow(ctx, query, id, rawItems, s.now()))
}

func (s *PostgresStore) GetList(ctx context.Context, id string) (*models.ShoppingList, error) {
	query := `SELECT id, items, created_at, updated_at FROM shopping_lists WHERE id = $1`
	list, err := scanList(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (s *PostgresStore) UpdateList(ctx context.Context, id string, items []models.ShoppingItem) (*models.ShoppingList, error) {
	rawItems, err := marshalItems(items)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE shopping_lists
		SET items = $2, updated_at = GREATEST($3, updated_at + 1)
		WHERE id = $1
		RETURNING id, items, created_at, updated_at
	`
	list, err := scanList(s.pool.QueryRow(ctx, query, id, rawItems, s.now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return list, nil
}

func (s *PostgresStore) ListExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM shopping_lists WHERE id = $1)"
	if err := s.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PostgresStore) CreateShare(ctx context.Context, id string, items []models.ShoppingItem, recipes []string) (*models.SharedList, error) {
	if recipes == nil {
		recipes = models.RecipeIDs(items)
	}
	rawItems, err := marshalItems(items)
	if err != nil {
		return nil, err
	}
	rawRecipes, err := json.Marshal(recipes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipes: %w", err)
	}
	query := `
		INSERT INTO shared_lists (id, items, recipes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING items, recipes, created_at, updated_at, views_count
	`
	return scanShare(s.pool.QueryRow(ctx, query, id, rawItems, rawRecipes, s.now()))
}

func (s *PostgresStore) GetShare(ctx context.Context, id string, countView bool) (*models.SharedList, error) {
	query := `
		SELECT items, recipes, created_at, updated_at, views_count
		FROM shared_lists
		WHERE id = $1 AND updated_at >= $2
	`
	if countView {
		query = `
			UPDATE shared_lists
			SET views_count = views_count + 1
			WHERE id = $1 AND updated_at >= $2
			RETURNING items, recipes, created_at, updated_at, views_count
		`
	}
	shared, err := scanShare(s.pool.QueryRow(ctx, query, id, s.cutoff()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return shared, nil
}

func (s *PostgresStore) UpdateShare(ctx context.Context, id string, items []models.ShoppingItem) (*models.SharedList, error) {
	rawItems, err := marshalItems(items)
	if err != nil {
		return nil, err
	}
	rawRecipes, err := json.Marshal(models.RecipeIDs(items))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipes: %w", err)
	}
	query := `
		UPDATE shared_lists
		SET items = $2, recipes = $3, updated_at = GREATEST($4, updated_at + 1)
		WHERE id = $1 AND updated_at >= $5
		RETURNING items, recipes, created_at, updated_at, views_count
	`
	shared, err := scanShare(s.pool.QueryRow(ctx, query, id, rawItems, rawRecipes, s.now(), s.cutoff()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return shared, nil
}

func (s *PostgresStore) ShareExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM shared_lists WHERE id = $1)"
	if err := s.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// PurgeExpired deletes expired shares and owned lists untouched for the same
// period in one transaction.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.cutoff()
	var purged int64
	err := s.ExecTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM shared_lists WHERE updated_at < $1`, cutoff)
		if err != nil {
			return err
		}
		purged = tag.RowsAffected()
		_, err = tx.Exec(ctx, `DELETE FROM shopping_lists WHERE updated_at < $1`, cutoff)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired lists: %w", err)
	}
	return purged, nil
}
