package leave

import (
	"strings"

	leaveerrors "go-sge/internal/leave/errors"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

func isKnownStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func parseStatus(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !isKnownStatus(s) {
		return "", leaveerrors.ErrInvalidLeaveStatus
	}
	return s, nil
}

// checkReview guards Approve and Reject: only a pending request can be reviewed.
func checkReview(current, target string) error {
	if current != StatusPending {
		return leaveerrors.InvalidStatusTransition(current, target)
	}
	return nil
}
