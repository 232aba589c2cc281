package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE username=$1
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ---- refresh sessions (Postgres fallback when Redis is not configured) ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.username, u.email
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.Username, &user.Email)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// ---- ownership chain lookups ----
// Single-row lookups return sql.ErrNoRows unwrapped so the ownership
// resolver can collapse a missing link into its not-found outcome.

func (s *PostgresStore) BoardOwner(ctx context.Context, boardID string) (string, error) {
	var ownerID string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM boards WHERE id=$1`, boardID).Scan(&ownerID)
	if err != nil {
		return "", err
	}
	return ownerID, nil
}

func (s *PostgresStore) ColumnBoard(ctx context.Context, columnID string) (string, error) {
	var boardID string
	err := s.db.QueryRowContext(ctx, `SELECT board_id FROM columns WHERE id=$1`, columnID).Scan(&boardID)
	if err != nil {
		return "", err
	}
	return boardID, nil
}

func (s *PostgresStore) TaskColumn(ctx context.Context, taskID string) (string, error) {
	var columnID string
	err := s.db.QueryRowContext(ctx, `SELECT column_id FROM tasks WHERE id=$1`, taskID).Scan(&columnID)
	if err != nil {
		return "", err
	}
	return columnID, nil
}

func (s *PostgresStore) SubtaskTask(ctx context.Context, subtaskID string) (string, error) {
	var taskID string
	err := s.db.QueryRowContext(ctx, `SELECT task_id FROM subtasks WHERE id=$1`, subtaskID).Scan(&taskID)
	if err != nil {
		return "", err
	}
	return taskID, nil
}

// ---- boards ----

func (s *PostgresStore) InsertBoardWithColumns(ctx context.Context, board Board, columns []Column) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin board tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO boards (id, title, owner_id)
		VALUES ($1, $2, $3)
	`, board.ID, board.Title, board.OwnerID); err != nil {
		return fmt.Errorf("insert board: %w", err)
	}

	for _, column := range columns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO columns (id, board_id, name, position)
			VALUES ($1, $2, $3, $4)
		`, column.ID, column.BoardID, column.Name, column.Position); err != nil {
			return fmt.Errorf("insert board column: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit board tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBoard(ctx context.Context, boardID string) (Board, error) {
	var item Board
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, owner_id, created_at, updated_at
		FROM boards
		WHERE id=$1
	`, boardID).Scan(&item.ID, &item.Title, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Board{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListBoards(ctx context.Context, ownerID string) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, owner_id, created_at, updated_at
		FROM boards
		WHERE owner_id=$1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	items := make([]Board, 0)
	for rows.Next() {
		var item Board
		if err := rows.Scan(&item.ID, &item.Title, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boards: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateBoardTitle(ctx context.Context, boardID, title string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE boards SET title=$2, updated_at=NOW()
		WHERE id=$1
	`, boardID, title)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	return nil
}

// DeleteBoard removes the board; columns, tasks and subtasks beneath it go
// with it through the FK cascade.
func (s *PostgresStore) DeleteBoard(ctx context.Context, boardID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id=$1`, boardID)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}

// ---- columns ----

func (s *PostgresStore) InsertColumn(ctx context.Context, column Column) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO columns (id, board_id, name, position)
		VALUES ($1, $2, $3, $4)
	`, column.ID, column.BoardID, column.Name, column.Position)
	if err != nil {
		return fmt.Errorf("insert column: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetColumn(ctx context.Context, columnID string) (Column, error) {
	var item Column
	err := s.db.QueryRowContext(ctx, `
		SELECT id, board_id, name, position
		FROM columns
		WHERE id=$1
	`, columnID).Scan(&item.ID, &item.BoardID, &item.Name, &item.Position)
	if err != nil {
		return Column{}, err
	}
	return item, nil
}

// ListColumns returns the caller's columns, ordered by position with id as
// the deterministic tie-break. boardID narrows to one board when non-empty.
func (s *PostgresStore) ListColumns(ctx context.Context, ownerID, boardID string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.board_id, c.name, c.position
		FROM columns c
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id=$1
		  AND ($2='' OR c.board_id=$2)
		ORDER BY c.position ASC, c.id ASC
	`, ownerID, boardID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	items := make([]Column, 0)
	for rows.Next() {
		var item Column
		if err := rows.Scan(&item.ID, &item.BoardID, &item.Name, &item.Position); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CountColumns(ctx context.Context, boardID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM columns WHERE board_id=$1`, boardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count columns: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateColumn(ctx context.Context, columnID, name string, position int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE columns SET name=$2, position=$3
		WHERE id=$1
	`, columnID, name, position)
	if err != nil {
		return fmt.Errorf("update column: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteColumn(ctx context.Context, columnID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM columns WHERE id=$1`, columnID)
	if err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	return nil
}

// ---- tasks ----

func (s *PostgresStore) InsertTaskWithSubtasks(ctx context.Context, task Task, subtasks []Subtask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin task tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, column_id, title, description, status, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, task.ID, task.ColumnID, task.Title, task.Description, task.Status, task.Position); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	for _, subtask := range subtasks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subtasks (id, task_id, title, is_completed, position)
			VALUES ($1, $2, $3, $4, $5)
		`, subtask.ID, subtask.TaskID, subtask.Title, subtask.IsCompleted, subtask.Position); err != nil {
			return fmt.Errorf("insert task subtask: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, taskID string) (Task, error) {
	var item Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, column_id, title, description, status, position
		FROM tasks
		WHERE id=$1
	`, taskID).Scan(&item.ID, &item.ColumnID, &item.Title, &item.Description, &item.Status, &item.Position)
	if err != nil {
		return Task{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, ownerID, columnID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.column_id, t.title, t.description, t.status, t.position
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id=$1
		  AND ($2='' OR t.column_id=$2)
		ORDER BY t.position ASC, t.id ASC
	`, ownerID, columnID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		var item Task
		if err := rows.Scan(&item.ID, &item.ColumnID, &item.Title, &item.Description, &item.Status, &item.Position); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CountTasks(ctx context.Context, columnID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE column_id=$1`, columnID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task Task) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title=$2, description=$3, status=$4, position=$5
		WHERE id=$1
	`, task.ID, task.Title, task.Description, task.Status, task.Position)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ---- subtasks ----

func (s *PostgresStore) InsertSubtask(ctx context.Context, subtask Subtask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subtasks (id, task_id, title, is_completed, position)
		VALUES ($1, $2, $3, $4, $5)
	`, subtask.ID, subtask.TaskID, subtask.Title, subtask.IsCompleted, subtask.Position)
	if err != nil {
		return fmt.Errorf("insert subtask: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSubtask(ctx context.Context, subtaskID string) (Subtask, error) {
	var item Subtask
	err := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, title, is_completed, position
		FROM subtasks
		WHERE id=$1
	`, subtaskID).Scan(&item.ID, &item.TaskID, &item.Title, &item.IsCompleted, &item.Position)
	if err != nil {
		return Subtask{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListSubtasks(ctx context.Context, ownerID, taskID string) ([]Subtask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT st.id, st.task_id, st.title, st.is_completed, st.position
		FROM subtasks st
		JOIN tasks t ON t.id = st.task_id
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id=$1
		  AND ($2='' OR st.task_id=$2)
		ORDER BY st.position ASC, st.id ASC
	`, ownerID, taskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	items := make([]Subtask, 0)
	for rows.Next() {
		var item Subtask
		if err := rows.Scan(&item.ID, &item.TaskID, &item.Title, &item.IsCompleted, &item.Position); err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtasks: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CountSubtasks(ctx context.Context, taskID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subtasks WHERE task_id=$1`, taskID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subtasks: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateSubtask(ctx context.Context, subtask Subtask) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE subtasks SET title=$2, is_completed=$3
		WHERE id=$1
	`, subtask.ID, subtask.Title, subtask.IsCompleted)
	if err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSubtask(ctx context.Context, subtaskID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id=$1`, subtaskID)
	if err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}

// ---- cascade bookkeeping for the search index ----

// TaskIDsUnderBoard returns ids of every task beneath a board, read before a
// cascade delete so the search index can be pruned afterwards.
func (s *PostgresStore) TaskIDsUnderBoard(ctx context.Context, boardID string) ([]string, error) {
	return s.taskIDs(ctx, `
		SELECT t.id FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE c.board_id=$1
	`, boardID)
}

func (s *PostgresStore) TaskIDsUnderColumn(ctx context.Context, columnID string) ([]string, error) {
	return s.taskIDs(ctx, `SELECT id FROM tasks WHERE column_id=$1`, columnID)
}

func (s *PostgresStore) taskIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task ids: %w", err)
	}
	return ids, nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint error.
func IsUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}
