package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/caretrack/hospital-backend/internal/scheduling"
)

func parseIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func parsePage(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func createAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			badRequest(w, "patient_id must be a valid UUID")
			return
		}
		providerID, err := uuid.Parse(req.ProviderID)
		if err != nil {
			badRequest(w, "provider_id must be a valid UUID")
			return
		}

		appt, err := svc.Create(r.Context(), scheduling.CreateInput{
			PatientID:  patientID,
			ProviderID: providerID,
			Title:      req.Title,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Status:     scheduling.Status(req.Status),
			Type:       req.Type,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "appointment created", toAppointmentResponse(appt))
	}
}

func updateAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		var req updateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		patch := scheduling.Patch{
			Title:     req.Title,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Type:      req.Type,
			Notes:     req.Notes,
		}
		if req.PatientID != nil {
			pid, err := uuid.Parse(*req.PatientID)
			if err != nil {
				badRequest(w, "patient_id must be a valid UUID")
				return
			}
			patch.PatientID = &pid
		}
		if req.ProviderID != nil {
			pid, err := uuid.Parse(*req.ProviderID)
			if err != nil {
				badRequest(w, "provider_id must be a valid UUID")
				return
			}
			patch.ProviderID = &pid
		}
		if req.Status != nil {
			status := scheduling.Status(*req.Status)
			patch.Status = &status
		}

		appt, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "appointment updated", toAppointmentResponse(appt))
	}
}

func deleteAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !deleted {
			writeSuccess(w, http.StatusOK, "appointment not found", false)
			return
		}

		writeSuccess(w, http.StatusOK, "appointment deleted", true)
	}
}

func getAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "appointment", toAppointmentResponse(appt))
	}
}

func parseWindow(r *http.Request) (scheduling.Window, bool) {
	from, ok := parseDateParam(r, "start_date")
	if !ok {
		return scheduling.Window{}, false
	}
	to, ok := parseDateParam(r, "end_date")
	if !ok {
		return scheduling.Window{}, false
	}
	return scheduling.Window{From: from, To: to}, true
}

func listAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, ok := parseWindow(r)
		if !ok {
			badRequest(w, "start_date and end_date must be RFC 3339 timestamps or YYYY-MM-DD dates")
			return
		}
		limit, offset := parsePage(r)
		appts, err := svc.List(r.Context(), window, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "appointments", toAppointmentResponses(appts))
	}
}

func listAppointmentsByProviderHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}
		window, ok := parseWindow(r)
		if !ok {
			badRequest(w, "start_date and end_date must be RFC 3339 timestamps or YYYY-MM-DD dates")
			return
		}
		limit, offset := parsePage(r)
		appts, err := svc.ListByProvider(r.Context(), id, window, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "appointments", toAppointmentResponses(appts))
	}
}

func listAppointmentsByPatientHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}
		window, ok := parseWindow(r)
		if !ok {
			badRequest(w, "start_date and end_date must be RFC 3339 timestamps or YYYY-MM-DD dates")
			return
		}
		limit, offset := parsePage(r)
		appts, err := svc.ListByPatient(r.Context(), id, window, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "appointments", toAppointmentResponses(appts))
	}
}
