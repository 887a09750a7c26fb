package payu

import "github.com/SeredDEV/store-payments/internal/gateway/domain"

// Transaction states returned by the payments API.
const (
	stateApproved  = "APPROVED"
	stateDeclined  = "DECLINED"
	statePending   = "PENDING"
	stateExpired   = "EXPIRED"
	stateError     = "ERROR"
	stateSubmitted = "SUBMITTED"
)

// statusByState maps the provider transaction vocabulary to canonical states.
// Unknown states fall back to pending, never to success.
var statusByState = map[string]domain.Status{
	stateApproved:  domain.StatusAuthorized,
	stateDeclined:  domain.StatusRequiresMore,
	statePending:   domain.StatusPending,
	stateSubmitted: domain.StatusPending,
	stateExpired:   domain.StatusCanceled,
	stateError:     domain.StatusError,
}

func statusFromState(state string) domain.Status {
	if status, ok := statusByState[state]; ok {
		return status
	}
	return domain.StatusPending
}

// Webhook state_pol codes: 4 approved, 5 expired, 6 declined, 7 pending,
// 104 transaction error.
var actionByStatePol = map[string]domain.WebhookAction{
	"4":   domain.ActionAuthorized,
	"5":   domain.ActionFailed,
	"6":   domain.ActionFailed,
	"7":   domain.ActionNotSupported,
	"104": domain.ActionFailed,
}

func actionFromStatePol(statePol string) domain.WebhookAction {
	if action, ok := actionByStatePol[statePol]; ok {
		return action
	}
	return domain.ActionNotSupported
}
