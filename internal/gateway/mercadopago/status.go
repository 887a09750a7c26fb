package mercadopago

import "github.com/SeredDEV/store-payments/internal/gateway/domain"

// Payment states returned by the payments API.
const (
	paymentApproved   = "approved"
	paymentPending    = "pending"
	paymentInProcess  = "in_process"
	paymentAuthorized = "authorized"
	paymentRejected   = "rejected"
	paymentCancelled  = "cancelled"
	paymentRefunded   = "refunded"
	paymentChargedBck = "charged_back"
)

// statusByPayment maps the provider vocabulary to canonical states. Unmapped
// states resolve to pending, never to success.
var statusByPayment = map[string]domain.Status{
	paymentApproved:   domain.StatusAuthorized,
	paymentAuthorized: domain.StatusAuthorized,
	paymentPending:    domain.StatusPending,
	paymentInProcess:  domain.StatusPending,
	paymentRejected:   domain.StatusRequiresMore,
	paymentCancelled:  domain.StatusCanceled,
	paymentRefunded:   domain.StatusRefunded,
	paymentChargedBck: domain.StatusError,
}

func statusFromPayment(status string) domain.Status {
	if mapped, ok := statusByPayment[status]; ok {
		return mapped
	}
	return domain.StatusPending
}
