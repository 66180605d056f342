// Package policy decides whether an authenticated caller may mutate a resource.
package policy

import (
	"strings"

	"pixfeed-server/internal/domain"

	"github.com/google/uuid"
)

// Authorize returns domain.ErrForbidden unless actorID and ownerID name the
// same user. UUIDs are compared in canonical form so that case and hyphen
// layout do not matter.
func Authorize(actorID, ownerID string) error {
	if actorID == "" || ownerID == "" {
		return domain.ErrForbidden
	}
	if sameID(actorID, ownerID) {
		return nil
	}
	return domain.ErrForbidden
}

func sameID(a, b string) bool {
	ua, errA := uuid.Parse(strings.TrimSpace(a))
	ub, errB := uuid.Parse(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		return ua == ub
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
