package controllers

import (
	"net/http"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/responses"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/validators"
	statesvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/uistate"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
)

var errMoveTarget = pkgerrors.New(pkgerrors.CodeValidation, "either step or to_index is required")

func UIStateGet(svc statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Load(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

type groupOrderRequest struct {
	Groups []string `json:"groups" validate:"required"`
}

func UIStateSaveGroupOrder(svc statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload groupOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SaveGroupOrder(r.Context(), orderID, payload.Groups)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

type moveGroupRequest struct {
	Name    string   `json:"name" validate:"required"`
	ToIndex *int     `json:"to_index,omitempty" validate:"omitempty,gte=0"`
	Step    string   `json:"step,omitempty" validate:"omitempty,oneof=up down"`
	Visible []string `json:"visible"`
}

// UIStateMoveGroup repositions one group, either to an absolute index or one
// step up or down. Visible carries the on-screen group order used to seed
// missing state.
func UIStateMoveGroup(svc statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload moveGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var state any
		switch {
		case payload.Step == "up":
			state, err = svc.MoveUp(r.Context(), orderID, payload.Name, payload.Visible)
		case payload.Step == "down":
			state, err = svc.MoveDown(r.Context(), orderID, payload.Name, payload.Visible)
		case payload.ToIndex != nil:
			state, err = svc.MoveGroup(r.Context(), orderID, payload.Name, *payload.ToIndex, payload.Visible)
		default:
			responses.WriteError(r.Context(), logg, w, errMoveTarget)
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

type renameGroupRequest struct {
	OldName string `json:"old_name" validate:"required"`
	NewName string `json:"new_name" validate:"required"`
}

func UIStateRenameGroup(svc statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload renameGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RenameGroup(r.Context(), orderID, payload.OldName, payload.NewName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

type confirmRequest struct {
	ItemID    string `json:"item_id" validate:"required"`
	Confirmed bool   `json:"confirmed"`
}

func UIStateSetConfirmed(svc statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetConfirmed(r.Context(), orderID, payload.ItemID, payload.Confirmed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

type confirmAllRequest struct {
	ItemIDs   []string `json:"item_ids"`
	Confirmed bool     `json:"confirmed"`
}

func UIStateSetAllConfirmed(svc statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmAllRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetAllConfirmed(r.Context(), orderID, payload.ItemIDs, payload.Confirmed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}
