package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHandler() http.Handler {
	svc, _ := newTestService()
	return NewHTTPServer(svc, "*").Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return payload
}

func registerViaHTTP(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body %s", username, rec.Code, rec.Body.String())
	}
	return decodeResponse(t, rec)["token"].(string)
}

func createBoard(t *testing.T, h http.Handler, token, title string, columnNames ...string) map[string]any {
	t.Helper()
	columns := make([]map[string]any, 0, len(columnNames))
	for _, name := range columnNames {
		columns = append(columns, map[string]any{"name": name})
	}
	rec := doRequest(t, h, http.MethodPost, "/api/boards", token, map[string]any{
		"title":   title,
		"columns": columns,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create board: status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeResponse(t, rec)
}

func details(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	d, ok := payload["details"].(map[string]any)
	if !ok {
		t.Fatalf("details has type %T, payload %v", payload["details"], payload)
	}
	return d
}

func TestRegisterLoginFlow(t *testing.T) {
	h := newTestHandler()

	rec := doRequest(t, h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "avery",
		"email":    "avery@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	registered := decodeResponse(t, rec)
	if registered["token"] == "" || registered["username"] != "avery" {
		t.Fatalf("unexpected register payload: %v", registered)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "avery",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	loggedIn := decodeResponse(t, rec)
	if loggedIn["user_id"] != registered["user_id"] {
		t.Fatalf("login user_id = %v, want %v", loggedIn["user_id"], registered["user_id"])
	}

	rec = doRequest(t, h, http.MethodGet, "/api/boards", loggedIn["token"].(string), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("boards status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newTestHandler()

	rec := doRequest(t, h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "avery",
		"password": "short12",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short password status = %d, want 422", rec.Code)
	}
	payload := decodeResponse(t, rec)
	if payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("code = %v, want VALIDATION_ERROR", payload["code"])
	}
	if _, ok := details(t, payload)["password"]; !ok {
		t.Fatalf("expected details on password, got %v", payload["details"])
	}

	registerViaHTTP(t, h, "taken")
	rec = doRequest(t, h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "taken",
		"password": "different456",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate username status = %d, want 422", rec.Code)
	}
	if _, ok := details(t, decodeResponse(t, rec))["username"]; !ok {
		t.Fatal("expected details on username")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newTestHandler()
	registerViaHTTP(t, h, "avery")

	for _, body := range []map[string]any{
		{"username": "avery", "password": "wrong-password"},
		{"username": "nobody", "password": "password123"},
	} {
		rec := doRequest(t, h, http.MethodPost, "/api/auth/login", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("login %v status = %d, want 401", body, rec.Code)
		}
		if code := decodeResponse(t, rec)["code"]; code != "INVALID_CREDENTIALS" {
			t.Fatalf("code = %v, want INVALID_CREDENTIALS", code)
		}
	}
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	h := newTestHandler()

	for _, token := range []string{"", "not-a-token"} {
		rec := doRequest(t, h, http.MethodGet, "/api/boards", token, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("token %q status = %d, want 401", token, rec.Code)
		}
	}
}

func TestCreateBoardWithInlineColumns(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")

	board := createBoard(t, h, token, "Launch plan", "Todo", "Doing", "Done")
	columns := board["columns"].([]any)
	if len(columns) != 3 {
		t.Fatalf("len(columns) = %d, want 3", len(columns))
	}
	wantNames := []string{"Todo", "Doing", "Done"}
	for i, raw := range columns {
		column := raw.(map[string]any)
		if column["name"] != wantNames[i] {
			t.Errorf("columns[%d].name = %v, want %s", i, column["name"], wantNames[i])
		}
		if column["order"] != float64(i) {
			t.Errorf("columns[%d].order = %v, want %d", i, column["order"], i)
		}
	}
}

func TestBoardUpdateValidation(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Old title")
	boardID := board["id"].(string)

	rec := doRequest(t, h, http.MethodPut, "/api/boards/"+boardID, token, map[string]any{"title": "New title"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if title := decodeResponse(t, rec)["title"]; title != "New title" {
		t.Fatalf("title = %v, want New title", title)
	}

	rec = doRequest(t, h, http.MethodPut, "/api/boards/"+boardID, token, map[string]any{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing title status = %d, want 422", rec.Code)
	}
	if _, ok := details(t, decodeResponse(t, rec))["title"]; !ok {
		t.Fatal("expected details on title")
	}
}

func TestCrossTenantAccessIsNotFound(t *testing.T) {
	h := newTestHandler()
	tokenA := registerViaHTTP(t, h, "owner")
	tokenB := registerViaHTTP(t, h, "intruder")

	board := createBoard(t, h, tokenA, "Private board", "Todo")
	boardID := board["id"].(string)
	columnID := board["columns"].([]any)[0].(map[string]any)["id"].(string)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", tokenA, map[string]any{
		"column":   columnID,
		"title":    "Secret task",
		"status":   "Todo",
		"subtasks": []map[string]any{{"title": "Secret subtask"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d, body %s", rec.Code, rec.Body.String())
	}
	task := decodeResponse(t, rec)
	taskID := task["id"].(string)
	subtaskID := task["subtasks"].([]any)[0].(map[string]any)["id"].(string)

	paths := []string{
		"/api/boards/" + boardID,
		"/api/columns/" + columnID,
		"/api/tasks/" + taskID,
		"/api/subtasks/" + subtaskID,
	}
	for _, path := range paths {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			rec := doRequest(t, h, method, path, tokenB, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s %s as intruder: status = %d, want 404", method, path, rec.Code)
			}
		}
	}

	rec = doRequest(t, h, http.MethodPut, "/api/tasks/"+taskID, tokenB, map[string]any{"title": "Hijacked"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant update status = %d, want 404", rec.Code)
	}

	// Nothing was deleted: the owner still sees everything.
	rec = doRequest(t, h, http.MethodGet, "/api/tasks/"+taskID, tokenA, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner re-read status = %d, want 200", rec.Code)
	}
}

func TestCreateColumnOnForeignBoard(t *testing.T) {
	h := newTestHandler()
	tokenA := registerViaHTTP(t, h, "owner")
	tokenB := registerViaHTTP(t, h, "intruder")

	board := createBoard(t, h, tokenA, "Private board")
	boardID := board["id"].(string)

	for _, target := range []string{boardID, "brd_does-not-exist"} {
		rec := doRequest(t, h, http.MethodPost, "/api/columns", tokenB, map[string]any{
			"board": target,
			"name":  "Sneaky column",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("board %s: status = %d, want 422", target, rec.Code)
		}
		payload := decodeResponse(t, rec)
		if payload["code"] != "VALIDATION_ERROR" {
			t.Fatalf("code = %v, want VALIDATION_ERROR", payload["code"])
		}
		if msg := details(t, payload)["board"]; msg != "Invalid board ID or permission denied" {
			t.Fatalf("details.board = %v", msg)
		}
	}
}

func TestColumnAppendAndReorder(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board")
	boardID := board["id"].(string)

	var columnIDs []string
	for i, name := range []string{"Todo", "Doing"} {
		rec := doRequest(t, h, http.MethodPost, "/api/columns", token, map[string]any{
			"board": boardID,
			"name":  name,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create column status = %d, body %s", rec.Code, rec.Body.String())
		}
		payload := decodeResponse(t, rec)
		if payload["order"] != float64(i) {
			t.Fatalf("column %s order = %v, want %d", name, payload["order"], i)
		}
		columnIDs = append(columnIDs, payload["id"].(string))
	}

	// Negative positions clamp to zero.
	rec := doRequest(t, h, http.MethodPut, "/api/columns/"+columnIDs[1], token, map[string]any{"order": -5})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, body %s", rec.Code, rec.Body.String())
	}
	if order := decodeResponse(t, rec)["order"]; order != float64(0) {
		t.Fatalf("order = %v, want 0", order)
	}
}

func TestColumnListingIsDeterministic(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board")
	boardID := board["id"].(string)

	for _, col := range []struct {
		name  string
		order int
	}{
		{"c-high", 2},
		{"c-zero", 0},
		{"c-tie-1", 1},
		{"c-tie-2", 1},
	} {
		rec := doRequest(t, h, http.MethodPost, "/api/columns", token, map[string]any{
			"board": boardID,
			"name":  col.name,
			"order": col.order,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create column status = %d", rec.Code)
		}
	}

	listOnce := func() []string {
		rec := doRequest(t, h, http.MethodGet, "/api/columns?board="+boardID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list status = %d", rec.Code)
		}
		items := decodeResponse(t, rec)["columns"].([]any)
		ids := make([]string, 0, len(items))
		lastOrder := -1.0
		for _, raw := range items {
			column := raw.(map[string]any)
			order := column["order"].(float64)
			if order < lastOrder {
				t.Fatalf("columns not sorted by order: %v after %v", order, lastOrder)
			}
			lastOrder = order
			ids = append(ids, column["id"].(string))
		}
		return ids
	}

	first := listOnce()
	second := listOnce()
	if len(first) != 4 {
		t.Fatalf("len(columns) = %d, want 4", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("listing order changed between calls: %v vs %v", first, second)
		}
	}
}

func TestTaskWithInlineSubtasks(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board", "Todo")
	columnID := board["columns"].([]any)[0].(map[string]any)["id"].(string)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"column":      columnID,
		"title":       "Ship release",
		"description": "Cut the final build",
		"status":      "Doing",
		"subtasks": []map[string]any{
			{"title": "Tag the commit", "is_completed": true},
			{"title": "Build artifacts"},
			{"title": "Publish notes", "is_completed": true},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeResponse(t, rec)
	taskID := created["id"].(string)

	verify := func(payload map[string]any) {
		t.Helper()
		subtasks := payload["subtasks"].([]any)
		if len(subtasks) != 3 {
			t.Fatalf("len(subtasks) = %d, want 3", len(subtasks))
		}
		wantTitles := []string{"Tag the commit", "Build artifacts", "Publish notes"}
		wantDone := []bool{true, false, true}
		for i, raw := range subtasks {
			subtask := raw.(map[string]any)
			if subtask["title"] != wantTitles[i] {
				t.Errorf("subtasks[%d].title = %v, want %s", i, subtask["title"], wantTitles[i])
			}
			if subtask["is_completed"] != wantDone[i] {
				t.Errorf("subtasks[%d].is_completed = %v, want %v", i, subtask["is_completed"], wantDone[i])
			}
		}
	}

	verify(created)

	rec = doRequest(t, h, http.MethodGet, "/api/tasks/"+taskID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task status = %d", rec.Code)
	}
	verify(decodeResponse(t, rec))
}

func TestTaskUpdateKeepsParent(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board", "Todo")
	columnID := board["columns"].([]any)[0].(map[string]any)["id"].(string)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"column": columnID,
		"title":  "Task",
		"status": "Todo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d", rec.Code)
	}
	taskID := decodeResponse(t, rec)["id"].(string)

	rec = doRequest(t, h, http.MethodPut, "/api/tasks/"+taskID, token, map[string]any{
		"status": "Done",
		"order":  7,
		"column": "col_other",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	payload := decodeResponse(t, rec)
	if payload["status"] != "Done" || payload["order"] != float64(7) {
		t.Fatalf("unexpected payload after update: %v", payload)
	}
	if payload["column"] != columnID {
		t.Fatalf("column = %v, want %s (parent reference must not move)", payload["column"], columnID)
	}
}

func TestTaskCreateRequiresStatus(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board", "Todo")
	columnID := board["columns"].([]any)[0].(map[string]any)["id"].(string)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"column": columnID,
		"title":  "Task",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create without status: status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
	if msg := details(t, decodeResponse(t, rec))["status"]; msg != "This field is required." {
		t.Fatalf("status detail = %v", msg)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"column": columnID,
		"title":  "Task",
		"status": "Todo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create with status: status = %d, body %s", rec.Code, rec.Body.String())
	}
	taskID := decodeResponse(t, rec)["id"].(string)

	rec = doRequest(t, h, http.MethodPut, "/api/tasks/"+taskID, token, map[string]any{"status": "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank status update: status = %d, want 422", rec.Code)
	}
}

func TestSearchRejectsNegativePaging(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")

	for _, query := range []string{"limit=-1", "offset=-5"} {
		rec := doRequest(t, h, http.MethodGet, "/api/search?q=x&"+query, token, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: status = %d, want 422", query, rec.Code)
		}
		if code := decodeResponse(t, rec)["code"]; code != "VALIDATION_ERROR" {
			t.Fatalf("%s: code = %v", query, code)
		}
	}
}

func TestBoardDeleteCascades(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board", "Todo")
	boardID := board["id"].(string)
	columnID := board["columns"].([]any)[0].(map[string]any)["id"].(string)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"column":   columnID,
		"title":    "Task",
		"status":   "Todo",
		"subtasks": []map[string]any{{"title": "Subtask"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d", rec.Code)
	}
	task := decodeResponse(t, rec)
	taskID := task["id"].(string)
	subtaskID := task["subtasks"].([]any)[0].(map[string]any)["id"].(string)

	rec = doRequest(t, h, http.MethodDelete, "/api/boards/"+boardID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	for _, path := range []string{
		"/api/boards/" + boardID,
		"/api/columns/" + columnID,
		"/api/tasks/" + taskID,
		"/api/subtasks/" + subtaskID,
	} {
		rec := doRequest(t, h, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s after cascade: status = %d, want 404", path, rec.Code)
		}
	}

	rec = doRequest(t, h, http.MethodGet, "/api/boards", token, nil)
	if boards := decodeResponse(t, rec)["boards"].([]any); len(boards) != 0 {
		t.Fatalf("len(boards) = %d, want 0", len(boards))
	}
}

func TestSubtaskLifecycle(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board", "Todo")
	columnID := board["columns"].([]any)[0].(map[string]any)["id"].(string)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"column": columnID,
		"title":  "Task",
		"status": "Todo",
	})
	taskID := decodeResponse(t, rec)["id"].(string)

	// Parent check uses the same collapsed error as a foreign parent.
	rec = doRequest(t, h, http.MethodPost, "/api/subtasks", token, map[string]any{
		"task":  "tsk_missing",
		"title": "Orphan",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("orphan subtask status = %d, want 422", rec.Code)
	}
	if msg := details(t, decodeResponse(t, rec))["task"]; msg != "Invalid task ID or permission denied" {
		t.Fatalf("details.task = %v", msg)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/subtasks", token, map[string]any{
		"task":  taskID,
		"title": "Write changelog",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subtask status = %d, body %s", rec.Code, rec.Body.String())
	}
	subtask := decodeResponse(t, rec)
	subtaskID := subtask["id"].(string)
	if subtask["is_completed"] != false {
		t.Fatalf("is_completed = %v, want false", subtask["is_completed"])
	}

	rec = doRequest(t, h, http.MethodPut, "/api/subtasks/"+subtaskID, token, map[string]any{"is_completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update subtask status = %d", rec.Code)
	}
	if done := decodeResponse(t, rec)["is_completed"]; done != true {
		t.Fatalf("is_completed = %v, want true", done)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/subtasks/"+subtaskID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete subtask status = %d, want 204", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/api/subtasks/"+subtaskID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted subtask status = %d, want 404", rec.Code)
	}
}

func TestSessionRefreshAndLogout(t *testing.T) {
	h := newTestHandler()

	rec := doRequest(t, h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "avery",
		"password": "password123",
	})
	registered := decodeResponse(t, rec)
	refreshToken := registered["refresh_token"].(string)

	rec = doRequest(t, h, http.MethodPost, "/api/session/refresh", "", map[string]any{"refresh_token": refreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	rotated := decodeResponse(t, rec)

	rec = doRequest(t, h, http.MethodPost, "/api/session/refresh", "", map[string]any{"refresh_token": refreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh status = %d, want 401", rec.Code)
	}

	token := rotated["token"].(string)
	rec = doRequest(t, h, http.MethodPost, "/api/session/logout", token, map[string]any{
		"refresh_token": rotated["refresh_token"],
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/boards", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("access after logout status = %d, want 401", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler()
	token := registerViaHTTP(t, h, "avery")
	board := createBoard(t, h, token, "Board")

	rec := doRequest(t, h, http.MethodPatch, "/api/boards/"+board["id"].(string), token, map[string]any{"title": "x"})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH status = %d, want 405", rec.Code)
	}
	rec = doRequest(t, h, http.MethodDelete, "/api/boards", token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE collection status = %d, want 405", rec.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	h := newTestHandler()

	rec := doRequest(t, h, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ok := decodeResponse(t, rec)["ok"]; ok != true {
		t.Fatalf("ready ok = %v, want true", ok)
	}
}
