package domain

const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

const (
	PaymentPending   = "PENDING"
	PaymentSuccess   = "SUCCESS"
	PaymentFailed    = "FAILED"
	PaymentCancelled = "CANCELLED"
)

const (
	ProductKindEvent   = "EVENT"
	ProductKindDigital = "DIGITAL"
)

const (
	CommissionPending = "PENDING"
	CommissionPaid    = "PAID"
	CommissionFailed  = "FAILED"
)

const (
	PayoutPending   = "PENDING"
	PayoutCompleted = "COMPLETED"
	PayoutFailed    = "FAILED"
)

const (
	OutboxQueued    = "QUEUED"
	OutboxRunning   = "RUNNING"
	OutboxCompleted = "COMPLETED"
	OutboxPartial   = "PARTIALLY_COMPLETED"
)

const (
	NotifOrder       = "ORDER"
	NotifPayment     = "PAYMENT"
	NotifPromotional = "PROMOTIONAL"
	NotifEventTicket = "EVENT_TICKET"
)

// PaymentTerminal reports whether a payment status can no longer change.
func PaymentTerminal(status string) bool {
	return status == PaymentSuccess || status == PaymentFailed || status == PaymentCancelled
}
