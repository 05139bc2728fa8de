package workflow

import (
	"github.com/lendcore/credit-workflow/internal/domain"
	customError "github.com/lendcore/credit-workflow/pkg/errors"
)

// Operation names every action the console can ask of an application.
type Operation string

const (
	OpEdit             Operation = "edit"
	OpSubmit           Operation = "submit"
	OpApprove          Operation = "approve"
	OpReject           Operation = "reject"
	OpCancel           Operation = "cancel"
	OpLinkCollateral   Operation = "link_collateral"
	OpUnlinkCollateral Operation = "unlink_collateral"
	OpPreviewSchedule  Operation = "preview_schedule"
)

// transitionTable maps each operation to the statuses it is legal in. The
// original console recomputed canEdit/canSubmit style booleans per screen;
// keeping one table here means guards and persistence cannot drift apart.
var transitionTable = map[Operation][]string{
	OpEdit:             {domain.StatusDraft},
	OpSubmit:           {domain.StatusDraft},
	OpApprove:          {domain.StatusSubmitted},
	OpReject:           {domain.StatusSubmitted},
	OpCancel:           {domain.StatusDraft, domain.StatusSubmitted},
	OpLinkCollateral:   {domain.StatusDraft},
	OpUnlinkCollateral: {domain.StatusDraft},
	OpPreviewSchedule:  {domain.StatusDraft, domain.StatusSubmitted},
}

// targetStatus is the status a state-changing operation lands in.
var targetStatus = map[Operation]string{
	OpSubmit:  domain.StatusSubmitted,
	OpApprove: domain.StatusApproved,
	OpReject:  domain.StatusRejected,
	OpCancel:  domain.StatusCancelled,
}

// Allowed reports whether an operation is legal in the given status.
func Allowed(op Operation, status string) bool {
	for _, s := range transitionTable[op] {
		if s == status {
			return true
		}
	}
	return false
}

// Guard returns an InvalidTransition error when the operation is illegal in
// the given status, nil otherwise.
func Guard(op Operation, applicationID, status string) error {
	if Allowed(op, status) {
		return nil
	}
	return customError.WrapInvalidTransition(applicationID, status, string(op))
}

// Target returns the destination status of a state-changing operation.
func Target(op Operation) (string, bool) {
	to, ok := targetStatus[op]
	return to, ok
}

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	switch status {
	case domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled:
		return true
	}
	return false
}
