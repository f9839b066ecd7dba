package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robml/dbaccounting/api/responses"
	"github.com/robml/dbaccounting/api/validators"
	"github.com/robml/dbaccounting/internal/accounts"
	"github.com/robml/dbaccounting/pkg/logger"
)

type accountCreateRequest struct {
	Name          string           `json:"name" validate:"required,max=64"`
	AccountTypeID uuid.UUID        `json:"account_type_id" validate:"required"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
}

type accountUpdateRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	AccountTypeID *uuid.UUID       `json:"account_type_id,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
}

// AccountList returns every account with its type preloaded.
func AccountList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AccountDetail returns one account by id.
func AccountDetail(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		account, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// AccountCreate opens a new account under an existing account type.
func AccountCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload accountCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Create(r.Context(), accounts.CreateAccountInput{
			Name:          payload.Name,
			AccountTypeID: payload.AccountTypeID,
			Balance:       payload.Balance,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

// AccountUpdate adjusts an account's name, type or restated balance.
func AccountUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload accountUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Update(r.Context(), id, accounts.UpdateAccountInput{
			Name:          payload.Name,
			AccountTypeID: payload.AccountTypeID,
			Balance:       payload.Balance,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

// AccountDelete removes an account and every transaction referencing it.
func AccountDelete(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
