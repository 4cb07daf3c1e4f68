package controllers

import (
	"net/http"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/middleware"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/responses"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/validators"
	ordersvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
)

type bulkNamesRequest struct {
	Names []string `json:"names" validate:"required,min=1"`
	Group string   `json:"group"`
}

// BulkAddItems inserts one zero-quantity row per pasted product name.
func BulkAddItems(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bulkNamesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		result, err := svc.BulkAddItems(r.Context(), orderID, scope, payload.Names, payload.Group)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func BulkRemoveByNames(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bulkNamesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.BulkRemoveByNames(r.Context(), orderID, payload.Names, payload.Group); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

// ApplySuggested seeds every line's quantity from its sales metric for the
// requested period.
func ApplySuggested(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.ApplySuggestedInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApplySuggested(r.Context(), orderID, payload.Period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func ZeroAllQuantities(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ZeroAllQuantities(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"zeroed": true})
	}
}

// SavePreviousQuantities stamps every line's current quantity into its
// prev_qty column before a new ordering round starts.
func SavePreviousQuantities(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SavePreviousQuantities(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"saved": true})
	}
}
