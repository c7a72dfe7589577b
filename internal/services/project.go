package services

import (
	"context"
	"database/sql"
	"fmt"

	model "cablecalc/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ProjectService struct {
	db *bun.DB
}

func NewProjectService(db *bun.DB) *ProjectService {
	return &ProjectService{db: db}
}

// Create adds a named project.
func (s *ProjectService) Create(ctx context.Context, name string) (*model.Project, error) {
	p := &model.Project{ID: uuid.New(), Name: name}
	if _, err := s.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.NewSelect().Model(&projects).OrderExpr("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := s.db.NewSelect().Model(&p).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project not found")
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a project and every segment record under it.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*model.SegmentRecord)(nil)).Where("project_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*model.Project)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("project not found")
		}
		return nil
	})
}

// ClearSegments drops every record from a project without deleting the
// project itself.
func (s *ProjectService) ClearSegments(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.NewDelete().Model((*model.SegmentRecord)(nil)).Where("project_id = ?", id).Exec(ctx)
	return err
}
