package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/webfusionlab/webfusion/internal/model"
)

const projectColumns = `id, admin_id, title, description, category, year, stack, image, link, created_at, updated_at`

// ListProjectsByOwner returns the projects owned by ownerID, newest first.
func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	projects := []model.Project{}
	q := s.db.Rebind("SELECT " + projectColumns + " FROM projects WHERE admin_id = ? ORDER BY created_at DESC, id DESC")
	if err := s.db.SelectContext(ctx, &projects, q, ownerID); err != nil {
		return nil, fmt.Errorf("list projects by owner: %w", err)
	}
	return projects, nil
}

// ListAllProjects returns every project regardless of owner, newest first.
func (s *Store) ListAllProjects(ctx context.Context) ([]model.Project, error) {
	projects := []model.Project{}
	q := "SELECT " + projectColumns + " FROM projects ORDER BY created_at DESC, id DESC"
	if err := s.db.SelectContext(ctx, &projects, q); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns the project with the given id if it is owned by
// ownerID. A project owned by someone else is reported as ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id, ownerID string) (*model.Project, error) {
	var p model.Project
	q := s.db.Rebind("SELECT " + projectColumns + " FROM projects WHERE id = ? AND admin_id = ?")
	if err := s.db.GetContext(ctx, &p, q, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// CreateProject inserts a project owned by ownerID.
func (s *Store) CreateProject(ctx context.Context, ownerID string, in model.ProjectInput) (*model.Project, error) {
	now := s.timestamp()
	stack := in.Stack
	if stack == nil {
		stack = model.Stack{}
	}
	p := &model.Project{
		ID:          uuid.Must(uuid.NewV7()).String(),
		AdminID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Year:        in.Year,
		Stack:       stack,
		Image:       nonEmpty(in.Image),
		Link:        nonEmpty(in.Link),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const q = `INSERT INTO projects
		(id, admin_id, title, description, category, year, stack, image, link, created_at, updated_at)
		VALUES
		(:id, :admin_id, :title, :description, :category, :year, :stack, :image, :link, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, p); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// UpdateProject applies patch to the project with the given id owned by
// ownerID and returns the stored result. Only the columns present in patch
// appear in the SET clause; an empty patch returns the current record.
func (s *Store) UpdateProject(ctx context.Context, id, ownerID string, patch model.ProjectPatch) (*model.Project, error) {
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return s.GetProject(ctx, id, ownerID)
	}

	sets := make([]string, 0, len(assignments)+1)
	args := make([]any, 0, len(assignments)+3)
	for _, a := range assignments {
		sets = append(sets, a.Column+" = ?")
		args = append(args, a.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.timestamp(), id, ownerID)

	q := s.db.Rebind("UPDATE projects SET " + strings.Join(sets, ", ") + " WHERE id = ? AND admin_id = ?")
	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetProject(ctx, id, ownerID)
}

// DeleteProject removes the project with the given id owned by ownerID and
// reports whether a row was removed.
func (s *Store) DeleteProject(ctx context.Context, id, ownerID string) (bool, error) {
	q := s.db.Rebind("DELETE FROM projects WHERE id = ? AND admin_id = ?")
	result, err := s.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return n > 0, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
