package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/pkg/metrics"
)

type ContainerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewContainerRepository(db *pgxpool.Pool, logger *zap.Logger) *ContainerRepository {
	return &ContainerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ContainerRepository) Insert(ctx context.Context, c *model.Container) (int, error) {
	r.logger.Debug("Inserting container",
		zap.Int("user_id", c.UserID),
		zap.String("name", c.Name),
		zap.Int("volume_ml", c.VolumeML),
	)
	start := time.Now()
	defer metrics.ObserveDBQuery("insert", "containers", start)

	query := `
        INSERT INTO containers (user_id, name, volume_ml, icon, position)
        VALUES ($1, $2, $3, $4,
            COALESCE((SELECT MAX(position) + 1 FROM containers WHERE user_id = $1), 0))
        RETURNING id, position, created_at
    `
	err := r.db.QueryRow(ctx, query,
		c.UserID,
		c.Name,
		c.VolumeML,
		c.Icon,
	).Scan(&c.ID, &c.Position, &c.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert container", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Container inserted successfully",
		zap.Int("id", c.ID),
		zap.Int("user_id", c.UserID),
	)
	return c.ID, nil
}

func (r *ContainerRepository) Update(ctx context.Context, c *model.Container) error {
	start := time.Now()
	defer metrics.ObserveDBQuery("update", "containers", start)

	tag, err := r.db.Exec(ctx,
		`UPDATE containers SET name = $1, volume_ml = $2, icon = $3 WHERE id = $4 AND user_id = $5`,
		c.Name, c.VolumeML, c.Icon, c.ID, c.UserID,
	)
	if err != nil {
		r.logger.Error("Failed to update container", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a container. Entries referencing it are left untouched;
// display falls back to "Custom".
func (r *ContainerRepository) Delete(ctx context.Context, userID, containerID int) (bool, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("delete", "containers", start)

	tag, err := r.db.Exec(ctx,
		`DELETE FROM containers WHERE id = $1 AND user_id = $2`,
		containerID, userID,
	)
	if err != nil {
		r.logger.Error("Failed to delete container", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ContainerRepository) GetByID(ctx context.Context, userID, containerID int) (*model.Container, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("select", "containers", start)

	query := `
        SELECT id, user_id, name, volume_ml, icon, position, created_at
        FROM containers
        WHERE id = $1 AND user_id = $2
    `
	var c model.Container
	err := r.db.QueryRow(ctx, query, containerID, userID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.VolumeML, &c.Icon, &c.Position, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.logger.Error("Failed to get container", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *ContainerRepository) ListByUser(ctx context.Context, userID int) ([]model.Container, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("select", "containers", start)

	query := `
        SELECT id, user_id, name, volume_ml, icon, position, created_at
        FROM containers
        WHERE user_id = $1
        ORDER BY position ASC
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list containers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var containers []model.Container
	for rows.Next() {
		var c model.Container
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.VolumeML, &c.Icon, &c.Position, &c.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan container", zap.Error(err))
			return nil, err
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// Reorder rewrites positions to match the given id order.
func (r *ContainerRepository) Reorder(ctx context.Context, userID int, orderedIDs []int) error {
	start := time.Now()
	defer metrics.ObserveDBQuery("update", "containers", start)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin reorder transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback(ctx)

	for pos, id := range orderedIDs {
		if _, err := tx.Exec(ctx,
			`UPDATE containers SET position = $1 WHERE id = $2 AND user_id = $3`,
			pos, id, userID,
		); err != nil {
			r.logger.Error("Failed to reorder container",
				zap.Int("container_id", id),
				zap.Error(err),
			)
			return err
		}
	}

	return tx.Commit(ctx)
}
