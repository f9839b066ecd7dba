package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robml/dbaccounting/internal/ledger"
	"github.com/robml/dbaccounting/pkg/db/models"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
)

type stubLedgerService struct {
	txn    *models.Transaction
	txns   []models.Transaction
	node   *ledger.Node
	err    error
	gotID  uuid.UUID
	gotIn  ledger.PostInput
	called string
}

func (s *stubLedgerService) List(ctx context.Context) ([]models.Transaction, error) {
	s.called = "list"
	return s.txns, s.err
}

func (s *stubLedgerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	s.called = "get"
	s.gotID = id
	return s.txn, s.err
}

func (s *stubLedgerService) Post(ctx context.Context, input ledger.PostInput) (*models.Transaction, error) {
	s.called = "post"
	s.gotIn = input
	return s.txn, s.err
}

func (s *stubLedgerService) Amend(ctx context.Context, id uuid.UUID, input ledger.PostInput) (*models.Transaction, error) {
	s.called = "amend"
	s.gotID = id
	s.gotIn = input
	return s.txn, s.err
}

func (s *stubLedgerService) Retract(ctx context.Context, id uuid.UUID) error {
	s.called = "retract"
	s.gotID = id
	return s.err
}

func (s *stubLedgerService) Ledger(ctx context.Context, accountTypeID uuid.UUID) (*ledger.Node, error) {
	s.called = "ledger"
	s.gotID = accountTypeID
	return s.node, s.err
}

func withPathID(req *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTransactionPostSuccess(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	svc := &stubLedgerService{txn: &models.Transaction{
		ID:            uuid.New(),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        decimal.NewFromInt(100),
	}}
	handler := TransactionPost(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"from_account_id": from,
		"to_account_id":   to,
		"amount":          "100",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.called != "post" {
		t.Fatalf("expected post call, got %q", svc.called)
	}
	if svc.gotIn.FromAccountID != from || svc.gotIn.ToAccountID != to {
		t.Fatalf("unexpected input: %+v", svc.gotIn)
	}
	if !svc.gotIn.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected amount: %s", svc.gotIn.Amount)
	}
}

func TestTransactionPostRejectsBadBody(t *testing.T) {
	handler := TransactionPost(&stubLedgerService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader([]byte(`{"bogus":`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestTransactionPostValidationError(t *testing.T) {
	svc := &stubLedgerService{err: pkgerrors.New(pkgerrors.CodeValidation, "insufficient funds")}
	handler := TransactionPost(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"from_account_id": uuid.New(),
		"to_account_id":   uuid.New(),
		"amount":          "20",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "insufficient funds" {
		t.Fatalf("expected message passthrough, got %q", envelope.Error.Message)
	}
}

func TestTransactionAmendSuccess(t *testing.T) {
	origID := uuid.New()
	svc := &stubLedgerService{txn: &models.Transaction{ID: uuid.New(), UpdatingID: &origID}}
	handler := TransactionAmend(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"from_account_id": uuid.New(),
		"to_account_id":   uuid.New(),
		"amount":          "50",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/transactions/"+origID.String(), bytes.NewReader(body))
	req = withPathID(req, origID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.called != "amend" || svc.gotID != origID {
		t.Fatalf("expected amend of %s, got %q %s", origID, svc.called, svc.gotID)
	}
}

func TestTransactionAmendConflict(t *testing.T) {
	svc := &stubLedgerService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already amended")}
	handler := TransactionAmend(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"from_account_id": uuid.New(),
		"to_account_id":   uuid.New(),
		"amount":          "50",
	})
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/transactions/"+id.String(), bytes.NewReader(body))
	req = withPathID(req, id)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestTransactionRetractSuccess(t *testing.T) {
	svc := &stubLedgerService{}
	handler := TransactionRetract(svc, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+id.String(), nil)
	req = withPathID(req, id)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.called != "retract" || svc.gotID != id {
		t.Fatalf("expected retract of %s, got %q %s", id, svc.called, svc.gotID)
	}
}

func TestTransactionRetractNotFound(t *testing.T) {
	svc := &stubLedgerService{err: pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")}
	handler := TransactionRetract(svc, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+id.String(), nil)
	req = withPathID(req, id)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestTransactionDetailInvalidID(t *testing.T) {
	handler := TransactionDetail(&stubLedgerService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
