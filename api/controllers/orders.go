package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/middleware"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/responses"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/validators"
	ordersvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	statesvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/uistate"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
)

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("missing %s", name))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// OrderGetOrCreate returns the provider's latest order, creating a pending
// one when none exists yet.
func OrderGetOrCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := parseUUIDParam(r, "providerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		detail, err := svc.GetOrCreateOrder(r.Context(), providerID, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// OrderUpdateHeader patches order status and notes.
func OrderUpdateHeader(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.UpdateOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateOrderHeader(r.Context(), orderID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// OrderClipboard renders the order as plain text grouped for messaging apps.
// Groups follow the persisted display order when one exists.
func OrderClipboard(svc ordersvc.Service, states statesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var groupOrder []string
		if states != nil {
			state, err := states.Load(r.Context(), orderID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			groupOrder = state.GroupOrder
		}

		text, err := svc.ClipboardText(r.Context(), orderID, groupOrder)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(text)); err != nil && logg != nil {
			logg.Error(r.Context(), "clipboard write failed", err)
		}
	}
}
