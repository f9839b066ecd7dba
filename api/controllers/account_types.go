package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robml/dbaccounting/api/responses"
	"github.com/robml/dbaccounting/api/validators"
	"github.com/robml/dbaccounting/internal/accounttypes"
	"github.com/robml/dbaccounting/internal/ledger"
	"github.com/robml/dbaccounting/pkg/enums"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
	"github.com/robml/dbaccounting/pkg/logger"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}

type accountTypeCreateRequest struct {
	Name        string     `json:"name" validate:"required,max=64"`
	BalanceType string     `json:"balance_type" validate:"required,oneof=credit debit"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

type accountTypeUpdateRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	BalanceType *string    `json:"balance_type,omitempty" validate:"omitempty,oneof=credit debit"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	ClearParent bool       `json:"clear_parent,omitempty"`
}

// AccountTypeList returns every account type.
func AccountTypeList(svc accounttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountTypes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accountTypes)
	}
}

// AccountTypeDetail returns one account type by id.
func AccountTypeDetail(svc accounttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountType, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accountType)
	}
}

// AccountTypeCreate registers a new account type.
func AccountTypeCreate(svc accounttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload accountTypeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balanceType, err := enums.ParseBalanceType(payload.BalanceType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid balance type"))
			return
		}

		accountType, err := svc.Create(r.Context(), accounttypes.CreateAccountTypeInput{
			Name:        payload.Name,
			BalanceType: balanceType,
			ParentID:    payload.ParentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, accountType)
	}
}

// AccountTypeUpdate adjusts an account type's name, balance type or parent.
func AccountTypeUpdate(svc accounttypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload accountTypeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := accounttypes.UpdateAccountTypeInput{
			Name:        payload.Name,
			ParentID:    payload.ParentID,
			ClearParent: payload.ClearParent,
		}
		if payload.BalanceType != nil {
			balanceType, err := enums.ParseBalanceType(*payload.BalanceType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid balance type"))
				return
			}
			input.BalanceType = &balanceType
		}

		accountType, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accountType)
	}
}

// AccountTypeDelete removes an account type; accounts of that type and their
// transactions go with it.
func AccountTypeDelete(svc accounttypes.Service, logg *logger.Logger) http.HandlerFunc {
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

// AccountTypeLedger returns the recursive roll-up for one account type.
func AccountTypeLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		node, err := svc.Ledger(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, node)
	}
}
