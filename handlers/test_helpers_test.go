package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moneymanager/backend/database"
	"moneymanager/backend/migrations"
	"moneymanager/backend/services"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
)

type testEnv struct {
	db      *sqlx.DB
	store   *database.TransactionStore
	handler *TransactionHandler
}

// setupTestEnv wires a handler to a ledger on a fresh in-memory database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, database.MemoryPath, log)
	if err != nil {
		t.Fatalf("Error opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Sync(ctx, db, log); err != nil {
		t.Fatalf("Error syncing schema: %v", err)
	}

	store := database.NewTransactionStore(db)
	ledger := services.NewLedger(store, services.DefaultEditWindow)

	return &testEnv{
		db:      db,
		store:   store,
		handler: NewTransactionHandler(ledger, log),
	}
}

// insertTestTransaction writes a row directly, bypassing the ledger clock
func (e *testEnv) insertTestTransaction(t *testing.T, category interface{}, amount string, date, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := e.db.QueryRow(`
		INSERT INTO transactions (type, division, category, amount, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, "expense", "personal", category, amount, date.UTC(), createdAt.UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Error inserting test transaction: %v", err)
	}
	return id
}

// newJSONRequest builds a request with body encoded as JSON. A string body is sent verbatim.
func newJSONRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Error decoding error response: %v", err)
	}
	return resp.Error
}
