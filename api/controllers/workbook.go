package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/middleware"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/responses"
	ordersvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/workbook"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
)

const maxImportBytes = 10 << 20

// WorkbookExport streams the order as a styled xlsx attachment.
func WorkbookExport(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		w.Header().Set("Content-Type", workbook.MIMEXLSX)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=order-%s.xlsx", orderID))
		if err := workbook.Export(detail, w); err != nil {
			// headers are out, all we can do is log
			if logg != nil {
				logg.Error(r.Context(), "workbook export write failed", err)
			}
		}
	}
}

// WorkbookImport replaces the order's item list with the rows of an uploaded
// spreadsheet. Accepts multipart form uploads under "file" or a raw body.
func WorkbookImport(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
		var reader io.Reader = r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			file, _, err := r.FormFile("file")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing upload file"))
				return
			}
			defer file.Close()
			reader = file
		}

		rows, err := workbook.Import(reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.ReplaceAll(r.Context(), orderID, scope, rows); err != nil {
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
