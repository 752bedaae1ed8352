package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharingDomain "github.com/allisson/healthshare/internal/sharing/domain"
)

// accessUseCase implements the authorization evaluator.
type accessUseCase struct {
	grantRepo GrantRepository
	now       func() time.Time
}

// NewAccessUseCase creates a new authorization evaluator instance.
func NewAccessUseCase(grantRepo GrantRepository) AccessUseCase {
	return &accessUseCase{
		grantRepo: grantRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CanAccess evaluates whether the caller may read reports owned by
// resourceOwnerID. The decision order is fixed:
//
//  1. Owners always access their own reports; no grant is consulted.
//  2. Callers without the doctor role are denied regardless of grants held.
//  3. Doctors are allowed while at least one live grant from the owner exists.
//
// Every call hits the ledger fresh. Deactivating a token or letting it expire
// takes effect on the very next check.
func (a *accessUseCase) CanAccess(
	ctx context.Context,
	resourceOwnerID uuid.UUID,
	caller sharingDomain.Identity,
) (bool, error) {
	if caller.UserID == resourceOwnerID {
		return true, nil
	}

	if caller.Role != sharingDomain.RoleDoctor {
		return false, nil
	}

	return a.grantRepo.ExistsLiveGrant(ctx, resourceOwnerID, caller.UserID, a.now())
}
