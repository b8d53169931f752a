/*
approval.go - The shared resolution state machine

PURPOSE:
  One state machine governs resolution of both requestable entity
  kinds (leave requests and timesheet entries):

        ┌──────────┐   approve   ┌──────────┐
        │ Pending  │────────────▶│ Approved │ (terminal)
        │          │   reject    ├──────────┤
        │          │────────────▶│ Rejected │ (terminal)
        └──────────┘             └──────────┘

  There is no un-approve or un-reject transition. The status write is
  the only mutation a request ever receives.

AUTHORIZATION:
  An approver may resolve a request only when its owner is in the
  approver's team. The check is independent of request status.

CONCURRENCY:
  The Pending guard and the status write happen as one atomic unit in
  the repository (compare-and-swap on status == Pending), so of two
  racing resolutions exactly one succeeds and the other observes
  ErrAlreadyResolved. Each entity is an independent unit of
  concurrency control; no cross-entity ordering exists.

SEE ALSO:
  - store.go: ResolutionRepository contract
  - workforce/store: in-memory CAS implementation
  - store/sqlite: conditional-UPDATE CAS implementation
*/
package workforce

import "context"

// =============================================================================
// REQUESTABLE - Capability shared by both entity kinds
// =============================================================================

// Requestable is any entity that moves through the approval lifecycle.
type Requestable interface {
	RequestID() string
	OwnerID() string
	RequestStatus() Status
}

// ResolutionRepository loads requestable entities and applies the
// atomic Pending -> decision transition. One repository exists per
// entity kind.
type ResolutionRepository interface {
	// Get returns the entity or ErrNotFound.
	Get(ctx context.Context, id string) (Requestable, error)

	// Resolve atomically transitions the entity from Pending to
	// decision and returns the updated entity. Returns
	// AlreadyResolvedError when the entity is no longer Pending, so
	// concurrent resolutions have exactly one winner.
	Resolve(ctx context.Context, id string, decision Status) (Requestable, error)
}

// =============================================================================
// APPROVAL WORKFLOW
// =============================================================================

// ApprovalWorkflow resolves pending requests on behalf of authorized
// approvers. It is generic over the entity kind via the repository.
type ApprovalWorkflow struct {
	Repo ResolutionRepository
}

func NewApprovalWorkflow(repo ResolutionRepository) *ApprovalWorkflow {
	return &ApprovalWorkflow{Repo: repo}
}

// Resolve applies decision (Approved or Rejected) to the request with
// the given id. Fails with ErrInvalidDecision for any other decision,
// NotAuthorizedError when the owner is not in the approver's team, and
// AlreadyResolvedError when the request has left Pending.
func (w *ApprovalWorkflow) Resolve(
	ctx context.Context,
	id string,
	approver *User,
	decision Status,
) (Requestable, error) {
	if !decision.IsDecision() {
		return nil, ErrInvalidDecision
	}

	entity, err := w.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Authorization precedes the status guard: an unauthorized approver
	// learns nothing about resolution state.
	if !approver.Manages(entity.OwnerID()) {
		return nil, &NotAuthorizedError{ApproverID: approver.ID, OwnerID: entity.OwnerID()}
	}

	// Fast-path guard; the repository re-checks atomically with the write.
	if entity.RequestStatus() != StatusPending {
		return nil, &AlreadyResolvedError{RequestID: id, Status: entity.RequestStatus()}
	}

	return w.Repo.Resolve(ctx, id, decision)
}
