// Package ownership resolves which user may act on an entity by walking the
// parent chain up to the owning board. There is no ownership below the board:
// a column, task or subtask belongs to whoever owns the board at the root of
// its ancestor chain.
package ownership

import (
	"context"
	"database/sql"
	"errors"
)

// Kind identifies the entity type a chain walk starts from.
type Kind string

const (
	KindBoard   Kind = "board"
	KindColumn  Kind = "column"
	KindTask    Kind = "task"
	KindSubtask Kind = "subtask"
)

// ErrNotFound covers both a genuinely missing entity and one owned by another
// user. The two outcomes are deliberately indistinguishable so a caller can
// never probe for the existence of someone else's data.
var ErrNotFound = errors.New("entity not found")

// ChainStore supplies the parent lookups the resolver walks. Each lookup
// returns sql.ErrNoRows when the row does not exist.
type ChainStore interface {
	BoardOwner(ctx context.Context, boardID string) (string, error)
	ColumnBoard(ctx context.Context, columnID string) (string, error)
	TaskColumn(ctx context.Context, taskID string) (string, error)
	SubtaskTask(ctx context.Context, subtaskID string) (string, error)
}

type Resolver struct {
	chain ChainStore
}

func NewResolver(chain ChainStore) *Resolver {
	return &Resolver{chain: chain}
}

// OwnerOf walks the ancestor chain from the given entity to its board and
// returns the board owner's user id. A dangling link anywhere in the chain
// yields ErrNotFound.
func (r *Resolver) OwnerOf(ctx context.Context, kind Kind, entityID string) (string, error) {
	id := entityID
	var err error

	switch kind {
	case KindSubtask:
		if id, err = r.chain.SubtaskTask(ctx, id); err != nil {
			return "", collapse(err)
		}
		fallthrough
	case KindTask:
		if id, err = r.chain.TaskColumn(ctx, id); err != nil {
			return "", collapse(err)
		}
		fallthrough
	case KindColumn:
		if id, err = r.chain.ColumnBoard(ctx, id); err != nil {
			return "", collapse(err)
		}
		fallthrough
	case KindBoard:
		owner, err := r.chain.BoardOwner(ctx, id)
		if err != nil {
			return "", collapse(err)
		}
		return owner, nil
	default:
		return "", ErrNotFound
	}
}

// Authorize allows the caller iff the entity exists and its board is owned by
// the caller. Every other outcome, missing entity included, is ErrNotFound.
func (r *Resolver) Authorize(ctx context.Context, callerID string, kind Kind, entityID string) error {
	owner, err := r.OwnerOf(ctx, kind, entityID)
	if err != nil {
		return err
	}
	if owner != callerID {
		return ErrNotFound
	}
	return nil
}

func collapse(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
