package controllers

import (
	"net/http"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/responses"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/validators"
	snapsvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/snapshots"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
)

type saveSnapshotRequest struct {
	ProviderName string `json:"provider_name"`
}

// SnapshotSave captures the order's current items as a named snapshot.
func SnapshotSave(svc snapsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload saveSnapshotRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Save(r.Context(), orderID, payload.ProviderName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

func SnapshotList(svc snapsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshots, err := svc.List(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshots)
	}
}

// SnapshotOpen restores the snapshot's item list into its order.
func SnapshotOpen(svc snapsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshotID, err := parseUUIDParam(r, "snapshotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Open(r.Context(), snapshotID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"opened": true})
	}
}

func SnapshotDelete(svc snapsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshotID, err := parseUUIDParam(r, "snapshotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), snapshotID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
