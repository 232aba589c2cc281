package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskboard/api/internal/accounts"
	"taskboard/api/internal/auth"
	"taskboard/api/internal/config"
	"taskboard/api/internal/ordering"
	"taskboard/api/internal/ownership"
	"taskboard/api/internal/search"
	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Username     string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
	GetUserByID(ctx context.Context, userID string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error

	RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)

	BoardOwner(ctx context.Context, boardID string) (string, error)
	ColumnBoard(ctx context.Context, columnID string) (string, error)
	TaskColumn(ctx context.Context, taskID string) (string, error)
	SubtaskTask(ctx context.Context, subtaskID string) (string, error)

	InsertBoardWithColumns(ctx context.Context, board store.Board, columns []store.Column) error
	GetBoard(ctx context.Context, boardID string) (store.Board, error)
	ListBoards(ctx context.Context, ownerID string) ([]store.Board, error)
	UpdateBoardTitle(ctx context.Context, boardID, title string) error
	DeleteBoard(ctx context.Context, boardID string) error

	InsertColumn(ctx context.Context, column store.Column) error
	GetColumn(ctx context.Context, columnID string) (store.Column, error)
	ListColumns(ctx context.Context, ownerID, boardID string) ([]store.Column, error)
	CountColumns(ctx context.Context, boardID string) (int, error)
	UpdateColumn(ctx context.Context, columnID, name string, position int) error
	DeleteColumn(ctx context.Context, columnID string) error

	InsertTaskWithSubtasks(ctx context.Context, task store.Task, subtasks []store.Subtask) error
	GetTask(ctx context.Context, taskID string) (store.Task, error)
	ListTasks(ctx context.Context, ownerID, columnID string) ([]store.Task, error)
	CountTasks(ctx context.Context, columnID string) (int, error)
	UpdateTask(ctx context.Context, task store.Task) error
	DeleteTask(ctx context.Context, taskID string) error

	InsertSubtask(ctx context.Context, subtask store.Subtask) error
	GetSubtask(ctx context.Context, subtaskID string) (store.Subtask, error)
	ListSubtasks(ctx context.Context, ownerID, taskID string) ([]store.Subtask, error)
	CountSubtasks(ctx context.Context, taskID string) (int, error)
	UpdateSubtask(ctx context.Context, subtask store.Subtask) error
	DeleteSubtask(ctx context.Context, subtaskID string) error

	TaskIDsUnderBoard(ctx context.Context, boardID string) ([]string, error)
	TaskIDsUnderColumn(ctx context.Context, columnID string) ([]string, error)

	Ping(ctx context.Context) error
}

// sessionStore holds refresh-token sessions. Redis when configured, the
// Postgres store otherwise.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	Ping(ctx context.Context) error
}

type searchService interface {
	Search(q search.Query) (search.Response, error)
	IndexTask(t search.TaskRecord)
	DeleteTask(id string)
	DeleteTasks(ids []string)
	Backend() string
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	accounts *accounts.Service
	resolver *ownership.Resolver
	search   searchService
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions sessionStore, searchSvc *search.Service) *Service {
	if sessions == nil {
		sessions = dataStore
	}
	var sv searchService
	if searchSvc != nil {
		sv = searchSvc
	}
	return newService(cfg, dataStore, sessions, sv)
}

func newService(cfg config.Config, st dataStore, sessions sessionStore, searchSvc searchService) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		accounts: accounts.NewService(st),
		resolver: ownership.NewResolver(st),
		search:   searchSvc,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) PingSessions(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

// ---- auth ----

func (s *Service) Register(ctx context.Context, req accounts.RegisterRequest) (Session, error) {
	user, err := s.accounts.Register(ctx, req)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.accounts.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// session is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	record, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, record.ID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:      user.ID,
		Username: user.Username,
		JTI:      jti,
		Exp:      expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Username:     user.Username,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// ---- boards ----

type InlineColumn struct {
	Name string `json:"name"`
}

type CreateBoardInput struct {
	Title   string         `json:"title"`
	Columns []InlineColumn `json:"columns"`
}

type UpdateBoardInput struct {
	Title *string `json:"title"`
}

func (s *Service) CreateBoard(ctx context.Context, session Session, input CreateBoardInput) (map[string]any, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title", "This field is required.")
	}

	board := store.Board{
		ID:      util.NewID("brd"),
		Title:   title,
		OwnerID: session.UserID,
	}
	columns := make([]store.Column, 0, len(input.Columns))
	for i, col := range input.Columns {
		name := strings.TrimSpace(col.Name)
		if name == "" {
			return nil, validationError("columns", "Column names must not be blank.")
		}
		columns = append(columns, store.Column{
			ID:       util.NewID("col"),
			BoardID:  board.ID,
			Name:     name,
			Position: ordering.BatchPosition(i),
		})
	}

	if err := s.store.InsertBoardWithColumns(ctx, board, columns); err != nil {
		return nil, err
	}
	return s.GetBoard(ctx, session, board.ID)
}

// GetBoard returns the board with its full nested tree.
func (s *Service) GetBoard(ctx context.Context, session Session, boardID string) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindBoard, boardID); err != nil {
		return nil, err
	}
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	payloads, err := s.boardPayloads(ctx, session.UserID, []store.Board{board})
	if err != nil {
		return nil, err
	}
	return payloads[0], nil
}

func (s *Service) ListBoards(ctx context.Context, session Session) (map[string]any, error) {
	boards, err := s.store.ListBoards(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	payloads, err := s.boardPayloads(ctx, session.UserID, boards)
	if err != nil {
		return nil, err
	}
	return map[string]any{"boards": payloads}, nil
}

func (s *Service) UpdateBoard(ctx context.Context, session Session, boardID string, input UpdateBoardInput) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindBoard, boardID); err != nil {
		return nil, err
	}
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, validationError("title", "This field is required.")
	}
	if err := s.store.UpdateBoardTitle(ctx, boardID, strings.TrimSpace(*input.Title)); err != nil {
		return nil, err
	}
	return s.GetBoard(ctx, session, boardID)
}

func (s *Service) DeleteBoard(ctx context.Context, session Session, boardID string) error {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindBoard, boardID); err != nil {
		return err
	}
	taskIDs, err := s.store.TaskIDsUnderBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteTasks(taskIDs)
	}
	return nil
}

// boardPayloads assembles nested trees for the given boards from three
// owner-scoped bulk reads. Each list arrives position-sorted from the store,
// so grouping preserves sibling order.
func (s *Service) boardPayloads(ctx context.Context, ownerID string, boards []store.Board) ([]map[string]any, error) {
	columns, err := s.store.ListColumns(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	subtasks, err := s.store.ListSubtasks(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}

	subtasksByTask := make(map[string][]map[string]any)
	for _, subtask := range subtasks {
		subtasksByTask[subtask.TaskID] = append(subtasksByTask[subtask.TaskID], subtaskPayload(subtask))
	}
	tasksByColumn := make(map[string][]map[string]any)
	for _, task := range tasks {
		payload := taskPayload(task)
		payload["subtasks"] = emptyIfNil(subtasksByTask[task.ID])
		tasksByColumn[task.ColumnID] = append(tasksByColumn[task.ColumnID], payload)
	}
	columnsByBoard := make(map[string][]map[string]any)
	for _, column := range columns {
		payload := columnPayload(column)
		payload["tasks"] = emptyIfNil(tasksByColumn[column.ID])
		columnsByBoard[column.BoardID] = append(columnsByBoard[column.BoardID], payload)
	}

	payloads := make([]map[string]any, 0, len(boards))
	for _, board := range boards {
		payload := boardPayload(board)
		payload["columns"] = emptyIfNil(columnsByBoard[board.ID])
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// ---- columns ----

type CreateColumnInput struct {
	Board string `json:"board"`
	Name  string `json:"name"`
	Order *int   `json:"order"`
}

type UpdateColumnInput struct {
	Name  *string `json:"name"`
	Order *int    `json:"order"`
}

func (s *Service) CreateColumn(ctx context.Context, session Session, input CreateColumnInput) (map[string]any, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationError("name", "This field is required.")
	}
	boardID := strings.TrimSpace(input.Board)
	if boardID == "" {
		return nil, validationError("board", "This field is required.")
	}
	if err := s.authorizeParent(ctx, session, ownership.KindBoard, boardID, "board"); err != nil {
		return nil, err
	}

	position := 0
	if input.Order != nil {
		position = ordering.Normalize(*input.Order)
	} else {
		count, err := s.store.CountColumns(ctx, boardID)
		if err != nil {
			return nil, err
		}
		position = ordering.Append(count)
	}

	column := store.Column{
		ID:       util.NewID("col"),
		BoardID:  boardID,
		Name:     strings.TrimSpace(input.Name),
		Position: position,
	}
	if err := s.store.InsertColumn(ctx, column); err != nil {
		return nil, err
	}
	return columnPayload(column), nil
}

func (s *Service) GetColumn(ctx context.Context, session Session, columnID string) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindColumn, columnID); err != nil {
		return nil, err
	}
	column, err := s.store.GetColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	return columnPayload(column), nil
}

// ListColumns lists the caller's columns, optionally filtered to one board.
// A filter naming a foreign or unknown board simply matches nothing.
func (s *Service) ListColumns(ctx context.Context, session Session, boardID string) (map[string]any, error) {
	columns, err := s.store.ListColumns(ctx, session.UserID, boardID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(columns))
	for _, column := range columns {
		items = append(items, columnPayload(column))
	}
	return map[string]any{"columns": items}, nil
}

func (s *Service) UpdateColumn(ctx context.Context, session Session, columnID string, input UpdateColumnInput) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindColumn, columnID); err != nil {
		return nil, err
	}
	column, err := s.store.GetColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, validationError("name", "This field is required.")
		}
		column.Name = strings.TrimSpace(*input.Name)
	}
	if input.Order != nil {
		column.Position = ordering.Normalize(*input.Order)
	}
	if err := s.store.UpdateColumn(ctx, column.ID, column.Name, column.Position); err != nil {
		return nil, err
	}
	return columnPayload(column), nil
}

func (s *Service) DeleteColumn(ctx context.Context, session Session, columnID string) error {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindColumn, columnID); err != nil {
		return err
	}
	taskIDs, err := s.store.TaskIDsUnderColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteColumn(ctx, columnID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteTasks(taskIDs)
	}
	return nil
}

// ---- tasks ----

type InlineSubtask struct {
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
}

type CreateTaskInput struct {
	Column      string          `json:"column"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Order       *int            `json:"order"`
	Subtasks    []InlineSubtask `json:"subtasks"`
}

type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Order       *int    `json:"order"`
}

func (s *Service) CreateTask(ctx context.Context, session Session, input CreateTaskInput) (map[string]any, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationError("title", "This field is required.")
	}
	if strings.TrimSpace(input.Status) == "" {
		return nil, validationError("status", "This field is required.")
	}
	columnID := strings.TrimSpace(input.Column)
	if columnID == "" {
		return nil, validationError("column", "This field is required.")
	}
	if err := s.authorizeParent(ctx, session, ownership.KindColumn, columnID, "column"); err != nil {
		return nil, err
	}

	position := 0
	if input.Order != nil {
		position = ordering.Normalize(*input.Order)
	} else {
		count, err := s.store.CountTasks(ctx, columnID)
		if err != nil {
			return nil, err
		}
		position = ordering.Append(count)
	}

	task := store.Task{
		ID:          util.NewID("tsk"),
		ColumnID:    columnID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      input.Status,
		Position:    position,
	}
	subtasks := make([]store.Subtask, 0, len(input.Subtasks))
	for i, sub := range input.Subtasks {
		if strings.TrimSpace(sub.Title) == "" {
			return nil, validationError("subtasks", "Subtask titles must not be blank.")
		}
		subtasks = append(subtasks, store.Subtask{
			ID:          util.NewID("sub"),
			TaskID:      task.ID,
			Title:       strings.TrimSpace(sub.Title),
			IsCompleted: sub.IsCompleted,
			Position:    ordering.BatchPosition(i),
		})
	}

	if err := s.store.InsertTaskWithSubtasks(ctx, task, subtasks); err != nil {
		return nil, err
	}
	s.indexTask(ctx, session, task)

	payload := taskPayload(task)
	items := make([]map[string]any, 0, len(subtasks))
	for _, sub := range subtasks {
		items = append(items, subtaskPayload(sub))
	}
	payload["subtasks"] = items
	return payload, nil
}

func (s *Service) GetTask(ctx context.Context, session Session, taskID string) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindTask, taskID); err != nil {
		return nil, err
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	subtasks, err := s.store.ListSubtasks(ctx, session.UserID, taskID)
	if err != nil {
		return nil, err
	}
	payload := taskPayload(task)
	items := make([]map[string]any, 0, len(subtasks))
	for _, sub := range subtasks {
		items = append(items, subtaskPayload(sub))
	}
	payload["subtasks"] = items
	return payload, nil
}

func (s *Service) ListTasks(ctx context.Context, session Session, columnID string) (map[string]any, error) {
	tasks, err := s.store.ListTasks(ctx, session.UserID, columnID)
	if err != nil {
		return nil, err
	}
	subtasks, err := s.store.ListSubtasks(ctx, session.UserID, "")
	if err != nil {
		return nil, err
	}
	subtasksByTask := make(map[string][]map[string]any)
	for _, sub := range subtasks {
		subtasksByTask[sub.TaskID] = append(subtasksByTask[sub.TaskID], subtaskPayload(sub))
	}
	items := make([]map[string]any, 0, len(tasks))
	for _, task := range tasks {
		payload := taskPayload(task)
		payload["subtasks"] = emptyIfNil(subtasksByTask[task.ID])
		items = append(items, payload)
	}
	return map[string]any{"tasks": items}, nil
}

func (s *Service) UpdateTask(ctx context.Context, session Session, taskID string, input UpdateTaskInput) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindTask, taskID); err != nil {
		return nil, err
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, validationError("title", "This field is required.")
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if strings.TrimSpace(*input.Status) == "" {
			return nil, validationError("status", "This field is required.")
		}
		task.Status = *input.Status
	}
	if input.Order != nil {
		task.Position = ordering.Normalize(*input.Order)
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	s.indexTask(ctx, session, task)
	return s.GetTask(ctx, session, taskID)
}

func (s *Service) DeleteTask(ctx context.Context, session Session, taskID string) error {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindTask, taskID); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteTask(taskID)
	}
	return nil
}

func (s *Service) indexTask(ctx context.Context, session Session, task store.Task) {
	if s.search == nil {
		return
	}
	boardID, err := s.store.ColumnBoard(ctx, task.ColumnID)
	if err != nil {
		return
	}
	s.search.IndexTask(search.TaskRecord{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		ColumnID:    task.ColumnID,
		BoardID:     boardID,
		OwnerID:     session.UserID,
	})
}

// ---- subtasks ----

type CreateSubtaskInput struct {
	Task        string `json:"task"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
}

type UpdateSubtaskInput struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"is_completed"`
}

func (s *Service) CreateSubtask(ctx context.Context, session Session, input CreateSubtaskInput) (map[string]any, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationError("title", "This field is required.")
	}
	taskID := strings.TrimSpace(input.Task)
	if taskID == "" {
		return nil, validationError("task", "This field is required.")
	}
	if err := s.authorizeParent(ctx, session, ownership.KindTask, taskID, "task"); err != nil {
		return nil, err
	}

	count, err := s.store.CountSubtasks(ctx, taskID)
	if err != nil {
		return nil, err
	}
	subtask := store.Subtask{
		ID:          util.NewID("sub"),
		TaskID:      taskID,
		Title:       strings.TrimSpace(input.Title),
		IsCompleted: input.IsCompleted,
		Position:    ordering.Append(count),
	}
	if err := s.store.InsertSubtask(ctx, subtask); err != nil {
		return nil, err
	}
	return subtaskPayload(subtask), nil
}

func (s *Service) GetSubtask(ctx context.Context, session Session, subtaskID string) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindSubtask, subtaskID); err != nil {
		return nil, err
	}
	subtask, err := s.store.GetSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	return subtaskPayload(subtask), nil
}

func (s *Service) ListSubtasks(ctx context.Context, session Session, taskID string) (map[string]any, error) {
	subtasks, err := s.store.ListSubtasks(ctx, session.UserID, taskID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(subtasks))
	for _, subtask := range subtasks {
		items = append(items, subtaskPayload(subtask))
	}
	return map[string]any{"subtasks": items}, nil
}

func (s *Service) UpdateSubtask(ctx context.Context, session Session, subtaskID string, input UpdateSubtaskInput) (map[string]any, error) {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindSubtask, subtaskID); err != nil {
		return nil, err
	}
	subtask, err := s.store.GetSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, validationError("title", "This field is required.")
		}
		subtask.Title = strings.TrimSpace(*input.Title)
	}
	if input.IsCompleted != nil {
		subtask.IsCompleted = *input.IsCompleted
	}
	if err := s.store.UpdateSubtask(ctx, subtask); err != nil {
		return nil, err
	}
	return subtaskPayload(subtask), nil
}

func (s *Service) DeleteSubtask(ctx context.Context, session Session, subtaskID string) error {
	if err := s.resolver.Authorize(ctx, session.UserID, ownership.KindSubtask, subtaskID); err != nil {
		return err
	}
	return s.store.DeleteSubtask(ctx, subtaskID)
}

// ---- search ----

func (s *Service) SearchTasks(ctx context.Context, session Session, query string, limit, offset int) (map[string]any, error) {
	if s.search == nil {
		return map[string]any{"results": []search.Result{}, "total": 0, "query": query}, nil
	}
	resp, err := s.search.Search(search.Query{
		Text:    query,
		OwnerID: session.UserID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"results": resp.Results,
		"total":   resp.Total,
		"query":   resp.Query,
		"backend": s.search.Backend(),
	}, nil
}

// authorizeParent checks a parent reference supplied on create. A parent that
// does not exist and a parent owned by someone else produce the same
// validation error, so the endpoint cannot be used to probe other users'
// data.
func (s *Service) authorizeParent(ctx context.Context, session Session, kind ownership.Kind, id, field string) error {
	err := s.resolver.Authorize(ctx, session.UserID, kind, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, ownership.ErrNotFound) {
		return validationError(field, "Invalid "+string(kind)+" ID or permission denied")
	}
	return err
}

// ---- payloads ----

func boardPayload(b store.Board) map[string]any {
	return map[string]any{
		"id":         b.ID,
		"title":      b.Title,
		"owner":      b.OwnerID,
		"created_at": b.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func columnPayload(c store.Column) map[string]any {
	return map[string]any{
		"id":    c.ID,
		"board": c.BoardID,
		"name":  c.Name,
		"order": c.Position,
	}
}

func taskPayload(t store.Task) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"column":      t.ColumnID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"order":       t.Position,
	}
}

func subtaskPayload(st store.Subtask) map[string]any {
	return map[string]any{
		"id":           st.ID,
		"task":         st.TaskID,
		"title":        st.Title,
		"is_completed": st.IsCompleted,
	}
}

func emptyIfNil(items []map[string]any) []map[string]any {
	if items == nil {
		return []map[string]any{}
	}
	return items
}
