package api

import (
	"encoding/json"
	"net/http"

	"github.com/caretrack/hospital-backend/internal/directory"
)

func createPatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		p, err := svc.CreatePatient(r.Context(), &directory.Patient{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			DateOfBirth: req.DateOfBirth,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "patient created", toPatientResponse(p))
	}
}

func getPatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "patient", toPatientResponse(p))
	}
}

func updatePatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		var req updatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		p, err := svc.UpdatePatient(r.Context(), id, directory.PatientPatch{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			DateOfBirth: req.DateOfBirth,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "patient updated", toPatientResponse(p))
	}
}

func deletePatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		deleted, err := svc.DeletePatient(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !deleted {
			writeSuccess(w, http.StatusOK, "patient not found", false)
			return
		}

		writeSuccess(w, http.StatusOK, "patient deleted", true)
	}
}

func listPatientsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePage(r)
		patients, err := svc.ListPatients(r.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]patientResponse, 0, len(patients))
		for i := range patients {
			out = append(out, toPatientResponse(&patients[i]))
		}
		writeSuccess(w, http.StatusOK, "patients", out)
	}
}

func createStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req staffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		st, err := svc.CreateStaff(r.Context(), &directory.Staff{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      req.Role,
			Specialty: req.Specialty,
			Email:     req.Email,
			Phone:     req.Phone,
			Active:    active,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "staff member created", toStaffResponse(st))
	}
}

func getStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		st, err := svc.GetStaff(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "staff member", toStaffResponse(st))
	}
}

func updateStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		var req updateStaffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "could not parse JSON")
			return
		}

		st, err := svc.UpdateStaff(r.Context(), id, directory.StaffPatch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      req.Role,
			Specialty: req.Specialty,
			Email:     req.Email,
			Phone:     req.Phone,
			Active:    req.Active,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "staff member updated", toStaffResponse(st))
	}
}

func deleteStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(r, "id")
		if !ok {
			badRequest(w, "id must be a valid UUID")
			return
		}

		deleted, err := svc.DeleteStaff(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !deleted {
			writeSuccess(w, http.StatusOK, "staff member not found", false)
			return
		}

		writeSuccess(w, http.StatusOK, "staff member deleted", true)
	}
}

func listStaffHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePage(r)
		staff, err := svc.ListStaff(r.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]staffResponse, 0, len(staff))
		for i := range staff {
			out = append(out, toStaffResponse(&staff[i]))
		}
		writeSuccess(w, http.StatusOK, "staff", out)
	}
}
