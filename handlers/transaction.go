package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"moneymanager/backend/models"
	"moneymanager/backend/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Ledger is the set of ledger operations exposed over HTTP
type Ledger interface {
	Create(ctx context.Context, input models.TransactionInput) (*models.Transaction, error)
	Transfer(ctx context.Context, input models.TransferInput) (*models.Transaction, error)
	Get(ctx context.Context, id int64) (*models.Transaction, error)
	Update(ctx context.Context, id int64, patch models.TransactionPatch) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	SummarizeByCategory(ctx context.Context) ([]models.CategoryTotal, error)
}

type TransactionHandler struct {
	ledger Ledger
	log    logrus.FieldLogger
}

func NewTransactionHandler(ledger Ledger, log logrus.FieldLogger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, log: log}
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.TransactionFilter{
		Division: query.Get("division"),
		Category: query.Get("category"),
		Start:    query.Get("start"),
		End:      query.Get("end"),
	}

	transactions, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var input models.TransactionInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	tx, err := h.ledger.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	tx, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	// An empty body is an empty patch. A body that does not decode is only
	// reported once the row is known to exist.
	var patch models.TransactionPatch
	if err := decodeBody(r, &patch); err != nil && !errors.Is(err, errEmptyBody) {
		if _, getErr := h.ledger.Get(r.Context(), id); getErr != nil {
			err = getErr
		}
		writeError(w, r, h.log, err)
		return
	}

	tx, err := h.ledger.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) AddTransfer(w http.ResponseWriter, r *http.Request) {
	var input models.TransferInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	tx, err := h.ledger.Transfer(r.Context(), input)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

var errEmptyBody = errors.New("request body is empty")

// transactionID reads the {id} route variable. Ids are assigned from 1, so a
// non-positive id names a row that cannot exist.
func transactionID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	if id <= 0 {
		return 0, services.ErrNotFound
	}
	return id, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
