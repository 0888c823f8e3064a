package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caretrack/hospital-backend/internal/billing"
	"github.com/caretrack/hospital-backend/internal/directory"
	"github.com/caretrack/hospital-backend/internal/scheduling"
)

// -- Appointments --

type createAppointmentRequest struct {
	PatientID  string    `json:"patient_id"`
	ProviderID string    `json:"provider_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status,omitempty"`
	Type       string    `json:"type,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}

type updateAppointmentRequest struct {
	PatientID  *string    `json:"patient_id,omitempty"`
	ProviderID *string    `json:"provider_id,omitempty"`
	Title      *string    `json:"title,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Status     *string    `json:"status,omitempty"`
	Type       *string    `json:"type,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

type appointmentResponse struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toAppointmentResponse(a *scheduling.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:         a.ID,
		PatientID:  a.PatientID,
		ProviderID: a.ProviderID,
		Title:      a.Title,
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		Status:     string(a.Status),
		Type:       a.Type,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toAppointmentResponses(as []scheduling.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(as))
	for i := range as {
		out = append(out, toAppointmentResponse(&as[i]))
	}
	return out
}

// -- Billing --

type invoiceItemRequest struct {
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	ServiceCode *string          `json:"service_code,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

type createInvoiceRequest struct {
	PatientID     string               `json:"patient_id"`
	AppointmentID *string              `json:"appointment_id,omitempty"`
	Items         []invoiceItemRequest `json:"items"`
	DueDate       time.Time            `json:"due_date"`
	Status        string               `json:"status,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
}

type updateInvoiceRequest struct {
	Status        *string    `json:"status,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type recordPaymentRequest struct {
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	ProcessedDate *time.Time      `json:"processed_date,omitempty"`
}

type invoiceItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Amount      decimal.Decimal  `json:"amount"`
	ServiceCode *string          `json:"service_code,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

type invoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	PatientID     uuid.UUID             `json:"patient_id"`
	AppointmentID *uuid.UUID            `json:"appointment_id,omitempty"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	Balance       decimal.Decimal       `json:"balance"`
	Status        string                `json:"status"`
	DueDate       time.Time             `json:"due_date"`
	PaidDate      *time.Time            `json:"paid_date,omitempty"`
	PaymentMethod *string               `json:"payment_method,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	Items         []invoiceItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toInvoiceResponse(inv *billing.Invoice) invoiceResponse {
	items := make([]invoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, invoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
			ServiceCode: it.ServiceCode,
			TaxRate:     it.TaxRate,
		})
	}
	return invoiceResponse{
		ID:            inv.ID,
		PatientID:     inv.PatientID,
		AppointmentID: inv.AppointmentID,
		TotalAmount:   inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		Balance:       inv.Balance,
		Status:        string(inv.Status),
		DueDate:       inv.DueDate,
		PaidDate:      inv.PaidDate,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		Items:         items,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

type paymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	ProcessedBy   string          `json:"processed_by"`
	ProcessedDate time.Time       `json:"processed_date"`
}

func toPaymentResponse(p *billing.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		ProcessedBy:   p.ProcessedBy,
		ProcessedDate: p.ProcessedDate,
	}
}

type statsResponse struct {
	TotalInvoiced      decimal.Decimal `json:"total_invoiced"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	InvoiceCount       int             `json:"invoice_count"`
	CountsByStatus     map[string]int  `json:"counts_by_status"`
}

func toStatsResponse(s *billing.Stats) statsResponse {
	counts := make(map[string]int, len(s.CountsByStatus))
	for status, n := range s.CountsByStatus {
		counts[string(status)] = n
	}
	return statsResponse{
		TotalInvoiced:      s.TotalInvoiced,
		TotalPaid:          s.TotalPaid,
		OutstandingBalance: s.OutstandingBalance,
		InvoiceCount:       s.InvoiceCount,
		CountsByStatus:     counts,
	}
}

// -- Directory --

type patientRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

type updatePatientRequest struct {
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

type patientResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toPatientResponse(p *directory.Patient) patientResponse {
	return patientResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type staffRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role"`
	Specialty *string `json:"specialty,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type updateStaffRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Specialty *string   `json:"specialty,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStaffResponse(s *directory.Staff) staffResponse {
	return staffResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Role:      s.Role,
		Specialty: s.Specialty,
		Email:     s.Email,
		Phone:     s.Phone,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
