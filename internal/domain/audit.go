package domain

// Audit action tags. The audit log is append-only; automatic actions are
// recorded with a null actor.
const (
	AuditActionAutoSuspend     = "service.auto_suspend"
	AuditActionReactivate      = "service.reactivate"
	AuditActionTerminate       = "service.terminate"
	AuditActionPaymentVerified = "payment.verify"
	AuditActionPaymentRejected = "payment.reject"
)

// Audit resource types.
const (
	AuditResourceService = "service"
	AuditResourcePayment = "payment"
)

// SuspensionAuditDetail is the structured payload written with an
// automatic suspension audit entry.
type SuspensionAuditDetail struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	CustomerID    string `json:"customer_id"`
	Reason        string `json:"reason"`
}
