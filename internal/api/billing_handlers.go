package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/hospital-backend/internal/billing"
)

func createInvoiceHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			badRequest(w, "patient_id must be a valid UUID")
			return
		}

		in := billing.CreateInvoiceInput{
			PatientID: patientID,
			DueDate:   req.DueDate,
			Status:    billing.Status(req.Status),
			Notes:     req.Notes,
		}
		if req.AppointmentID != nil {
			apptID, err := uuid.Parse(*req.AppointmentID)
			if err != nil {
				badRequest(w, "appointment_id must be a valid UUID")
				return
			}
			in.AppointmentID = &apptID
		}
		for _, it := range req.Items {
			in.Items = append(in.Items, billing.ItemInput{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				ServiceCode: it.ServiceCode,
				TaxRate:     it.TaxRate,
			})
		}

		inv, err := svc.CreateInvoice(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "invoice created", toInvoiceResponse(inv))
	}
}

func updateInvoiceHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		var req updateInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		patch := billing.Patch{
			DueDate:       req.DueDate,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		}
		if req.Status != nil {
			status := billing.Status(*req.Status)
			patch.Status = &status
		}

		inv, err := svc.UpdateInvoice(r.Context(), id, patch)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "invoice updated", toInvoiceResponse(inv))
	}
}

func deleteInvoiceHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		deleted, err := svc.DeleteInvoice(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !deleted {
			writeSuccess(w, http.StatusOK, "invoice not found", false)
			return
		}

		writeSuccess(w, http.StatusOK, "invoice deleted", true)
	}
}

func getInvoiceHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		inv, err := svc.GetInvoice(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "invoice", toInvoiceResponse(inv))
	}
}

func listInvoicesHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePage(r)
		invoices, err := svc.ListInvoices(r.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]invoiceResponse, 0, len(invoices))
		for i := range invoices {
			out = append(out, toInvoiceResponse(&invoices[i]))
		}
		writeSuccess(w, http.StatusOK, "invoices", out)
	}
}

func recordPaymentHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		invoiceID, err := uuid.Parse(req.InvoiceID)
		if err != nil {
			badRequest(w, "invoice_id must be a valid UUID")
			return
		}

		payment, err := svc.RecordPayment(r.Context(), billing.RecordPaymentInput{
			InvoiceID:     invoiceID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			TransactionID: req.TransactionID,
			Notes:         req.Notes,
			ProcessedBy:   ActorID(r.Context()),
			ProcessedDate: req.ProcessedDate,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "payment recorded", toPaymentResponse(payment))
	}
}

func listPaymentsHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		payments, err := svc.ListPayments(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]paymentResponse, 0, len(payments))
		for i := range payments {
			out = append(out, toPaymentResponse(&payments[i]))
		}
		writeSuccess(w, http.StatusOK, "payments", out)
	}
}

func billingStatsHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, ok := parseDateParam(r, "start_date")
		if !ok {
			badRequest(w, "start_date must be an RFC 3339 timestamp or YYYY-MM-DD date")
			return
		}
		to, ok := parseDateParam(r, "end_date")
		if !ok {
			badRequest(w, "end_date must be an RFC 3339 timestamp or YYYY-MM-DD date")
			return
		}

		stats, err := svc.GetStats(r.Context(), from, to)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "billing stats", toStatsResponse(stats))
	}
}

func parseDateParam(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, true
	}
	return nil, false
}
