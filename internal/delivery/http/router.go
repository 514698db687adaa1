package http

import (
	"net/http"

	"clinic-billing-core/internal/delivery/http/handler"
	"clinic-billing-core/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router               *mux.Router
	appointmentHandler   *handler.AppointmentHandler
	billHandler          *handler.BillHandler
	paymentHandler       *handler.PaymentHandler
	patientHandler       *handler.PatientHandler
	systemSettingHandler *handler.SystemSettingHandler
	auditLogHandler      *handler.AuditLogHandler
	authMiddleware       *middleware.AuthMiddleware
	corsMiddleware       *middleware.CORSMiddleware
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	billHandler *handler.BillHandler,
	paymentHandler *handler.PaymentHandler,
	patientHandler *handler.PatientHandler,
	systemSettingHandler *handler.SystemSettingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:               mux.NewRouter(),
		appointmentHandler:   appointmentHandler,
		billHandler:          billHandler,
		paymentHandler:       paymentHandler,
		patientHandler:       patientHandler,
		systemSettingHandler: systemSettingHandler,
		auditLogHandler:      auditLogHandler,
		authMiddleware:       authMiddleware,
		corsMiddleware:       corsMiddleware,
	}
}

func guard(gate func(http.Handler) http.Handler, fn http.HandlerFunc) http.Handler {
	return gate(fn)
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Everything else requires a valid access token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Appointments
	protected.Handle("/appointments", guard(middleware.RequireFrontDesk, r.appointmentHandler.BookAppointment)).Methods(http.MethodPost)
	protected.Handle("/appointments", guard(middleware.RequireStaff, r.appointmentHandler.GetAllAppointments)).Methods(http.MethodGet)
	protected.Handle("/appointments/{id}", guard(middleware.RequireStaff, r.appointmentHandler.GetAppointment)).Methods(http.MethodGet)
	protected.Handle("/appointments/{id}/status", guard(middleware.RequireStaff, r.appointmentHandler.UpdateStatus)).Methods(http.MethodPatch)
	protected.Handle("/appointments/{id}/cancel", guard(middleware.RequireFrontDesk, r.appointmentHandler.CancelAppointment)).Methods(http.MethodPost)
	protected.Handle("/appointments/{id}/reschedule", guard(middleware.RequireFrontDesk, r.appointmentHandler.RescheduleAppointment)).Methods(http.MethodPost)
	protected.Handle("/appointments/{id}/rescheduled-to", guard(middleware.RequireStaff, r.appointmentHandler.GetRescheduledTo)).Methods(http.MethodGet)

	// Bills
	protected.Handle("/bills/appointment", guard(middleware.RequireCashier, r.billHandler.CreateAppointmentBill)).Methods(http.MethodPost)
	protected.Handle("/bills/tests", guard(middleware.RequireCashier, r.billHandler.CreateTestOnlyBill)).Methods(http.MethodPost)
	protected.Handle("/bills/revenue", guard(middleware.RequireAdmin, r.billHandler.GetTotalRevenue)).Methods(http.MethodGet)
	protected.Handle("/bills", guard(middleware.RequireCashier, r.billHandler.GetAllBills)).Methods(http.MethodGet)
	protected.Handle("/bills/{id}", guard(middleware.RequireCashier, r.billHandler.GetBill)).Methods(http.MethodGet)
	protected.Handle("/bills/{id}", guard(middleware.RequireAdmin, r.billHandler.DeleteBill)).Methods(http.MethodDelete)
	protected.Handle("/bills/{id}/tests", guard(middleware.RequireCashier, r.billHandler.AddTest)).Methods(http.MethodPost)
	protected.Handle("/bills/{id}/items/{itemId}", guard(middleware.RequireCashier, r.billHandler.RemoveItem)).Methods(http.MethodDelete)
	protected.Handle("/bills/{id}/pay", guard(middleware.RequireCashier, r.paymentHandler.MarkPaid)).Methods(http.MethodPost)
	protected.Handle("/bills/{id}/payment", guard(middleware.RequireCashier, r.paymentHandler.GetPaymentByBill)).Methods(http.MethodGet)

	// Payments
	protected.Handle("/payments", guard(middleware.RequireCashier, r.paymentHandler.GetAllPayments)).Methods(http.MethodGet)
	protected.Handle("/payments/{id}", guard(middleware.RequireCashier, r.paymentHandler.GetPayment)).Methods(http.MethodGet)
	protected.Handle("/payments/{id}", guard(middleware.RequireAdmin, r.paymentHandler.DeletePayment)).Methods(http.MethodDelete)

	// Patients
	protected.Handle("/patients/{id}/history", guard(middleware.RequireStaff, r.patientHandler.GetPatientHistory)).Methods(http.MethodGet)

	// Settings
	protected.Handle("/settings", guard(middleware.RequireAdmin, r.systemSettingHandler.GetAllSettings)).Methods(http.MethodGet)
	protected.Handle("/settings/hospital-charge", guard(middleware.RequireStaff, r.systemSettingHandler.GetHospitalCharge)).Methods(http.MethodGet)
	protected.Handle("/settings/hospital-charge", guard(middleware.RequireAdmin, r.systemSettingHandler.UpdateHospitalCharge)).Methods(http.MethodPut)
	protected.Handle("/settings/specializations", guard(middleware.RequireStaff, r.systemSettingHandler.GetSpecializations)).Methods(http.MethodGet)
	protected.Handle("/settings/specializations", guard(middleware.RequireAdmin, r.systemSettingHandler.UpdateSpecializations)).Methods(http.MethodPut)

	// Audit logs (admin)
	protected.Handle("/audit-logs", guard(middleware.RequireAdmin, r.auditLogHandler.GetAllAuditLogs)).Methods(http.MethodGet)
	protected.Handle("/audit-logs/{id}", guard(middleware.RequireAdmin, r.auditLogHandler.GetAuditLog)).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
