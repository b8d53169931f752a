/*
approval_test.go - Specification tests for the approval workflow

PURPOSE:
  Documents the resolution rules shared by leave requests and
  timesheet entries: who may decide, the single-transition guarantee,
  and the exactly-one-winner outcome under concurrent decisions.
*/
package workforce_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/warp/workforce-engine/workforce"
	"github.com/warp/workforce-engine/workforce/store"
)

// approvalFixture seeds a manager, a direct report, an unrelated
// manager, and one pending leave request owned by the report.
func approvalFixture(t *testing.T) (*store.Memory, *workforce.User, *workforce.User, workforce.LeaveRequest) {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	manager := &workforce.User{
		ID:            "USR-MGR-01",
		Name:          "Priya Raman",
		Role:          workforce.RoleManager,
		TeamMemberIDs: []string{"USR-EMP-01"},
	}
	outsider := &workforce.User{
		ID:            "USR-MGR-02",
		Name:          "Dana Cole",
		Role:          workforce.RoleManager,
		TeamMemberIDs: []string{"USR-EMP-09"},
	}
	for _, u := range []*workforce.User{manager, outsider} {
		if err := m.SaveUser(ctx, *u); err != nil {
			t.Fatalf("save user: %v", err)
		}
	}

	req := workforce.LeaveRequest{
		ID:        "LR-001",
		UserID:    "USR-EMP-01",
		StartDate: workforce.Date(2024, time.September, 2),
		EndDate:   workforce.Date(2024, time.September, 4),
		Reason:    "Trip",
		LeaveType: workforce.LeavePaid,
		Status:    workforce.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.SaveLeaveRequest(ctx, req); err != nil {
		t.Fatalf("save leave request: %v", err)
	}
	return m, manager, outsider, req
}

func TestApproval_ManagerOfOwnerCanApprove(t *testing.T) {
	m, manager, _, req := approvalFixture(t)
	wf := workforce.NewApprovalWorkflow(workforce.LeaveResolutions(m))

	resolved, err := wf.Resolve(context.Background(), req.ID, manager, workforce.StatusApproved)
	if err != nil {
		t.Fatalf("expected approval to succeed, got %v", err)
	}
	if resolved.RequestStatus() != workforce.StatusApproved {
		t.Errorf("expected Approved, got %s", resolved.RequestStatus())
	}

	// The store reflects the transition.
	stored, err := m.GetLeaveRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("get after resolve: %v", err)
	}
	if stored.Status != workforce.StatusApproved {
		t.Errorf("store should hold Approved, got %s", stored.Status)
	}
}

func TestApproval_NonManagerIsRefused(t *testing.T) {
	// Authorization is checked before the status guard: an outsider is
	// refused whether or not the request is still pending.
	m, manager, outsider, req := approvalFixture(t)
	wf := workforce.NewApprovalWorkflow(workforce.LeaveResolutions(m))
	ctx := context.Background()

	_, err := wf.Resolve(ctx, req.ID, outsider, workforce.StatusApproved)
	var authErr *workforce.NotAuthorizedError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected NotAuthorizedError, got %v", err)
	}
	if authErr.ApproverID != outsider.ID || authErr.OwnerID != req.UserID {
		t.Errorf("error should name approver and owner, got %+v", authErr)
	}

	// Resolve it, then try the outsider again on the terminal request.
	if _, err := wf.Resolve(ctx, req.ID, manager, workforce.StatusRejected); err != nil {
		t.Fatalf("manager rejection failed: %v", err)
	}
	_, err = wf.Resolve(ctx, req.ID, outsider, workforce.StatusApproved)
	if !errors.Is(err, workforce.ErrNotAuthorized) {
		t.Fatalf("authorization must still win on resolved requests, got %v", err)
	}
}

func TestApproval_SecondDecisionIsRefused(t *testing.T) {
	m, manager, _, req := approvalFixture(t)
	wf := workforce.NewApprovalWorkflow(workforce.LeaveResolutions(m))
	ctx := context.Background()

	if _, err := wf.Resolve(ctx, req.ID, manager, workforce.StatusApproved); err != nil {
		t.Fatalf("first decision failed: %v", err)
	}

	_, err := wf.Resolve(ctx, req.ID, manager, workforce.StatusRejected)
	var resolvedErr *workforce.AlreadyResolvedError
	if !errors.As(err, &resolvedErr) {
		t.Fatalf("expected AlreadyResolvedError, got %v", err)
	}
	if resolvedErr.Status != workforce.StatusApproved {
		t.Errorf("error should carry the standing status, got %s", resolvedErr.Status)
	}

	// The first decision stands.
	stored, _ := m.GetLeaveRequest(ctx, req.ID)
	if stored.Status != workforce.StatusApproved {
		t.Errorf("first decision must stand, got %s", stored.Status)
	}
}

func TestApproval_PendingIsNotADecision(t *testing.T) {
	m, manager, _, req := approvalFixture(t)
	wf := workforce.NewApprovalWorkflow(workforce.LeaveResolutions(m))

	_, err := wf.Resolve(context.Background(), req.ID, manager, workforce.StatusPending)
	if !errors.Is(err, workforce.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestApproval_UnknownRequest(t *testing.T) {
	m, manager, _, _ := approvalFixture(t)
	wf := workforce.NewApprovalWorkflow(workforce.LeaveResolutions(m))

	_, err := wf.Resolve(context.Background(), "LR-MISSING", manager, workforce.StatusApproved)
	if !workforce.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestApproval_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	// GIVEN: one pending request, two managers of the owner deciding
	//        simultaneously in opposite directions
	// THEN:  exactly one decision succeeds; the loser sees
	//        AlreadyResolved; the store holds the winner's status

	m, manager, _, req := approvalFixture(t)
	ctx := context.Background()

	second := &workforce.User{
		ID:            "USR-MGR-03",
		Name:          "Lee Fontaine",
		Role:          workforce.RoleManager,
		TeamMemberIDs: []string{"USR-EMP-01"},
	}
	if err := m.SaveUser(ctx, *second); err != nil {
		t.Fatalf("save user: %v", err)
	}

	wf := workforce.NewApprovalWorkflow(workforce.LeaveResolutions(m))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	decisions := []struct {
		approver *workforce.User
		status   workforce.Status
	}{
		{manager, workforce.StatusApproved},
		{second, workforce.StatusRejected},
	}
	for i, d := range decisions {
		wg.Add(1)
		go func(i int, approver *workforce.User, status workforce.Status) {
			defer wg.Done()
			_, errs[i] = wf.Resolve(ctx, req.ID, approver, status)
		}(i, d.approver, d.status)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, workforce.ErrAlreadyResolved):
			losses++
		default:
			t.Fatalf("unexpected error in race: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner and one loser, got %d/%d", wins, losses)
	}

	stored, _ := m.GetLeaveRequest(ctx, req.ID)
	if !stored.Status.IsTerminal() {
		t.Errorf("request should be terminal after the race, got %s", stored.Status)
	}
}

func TestApproval_TimesheetEntriesShareTheWorkflow(t *testing.T) {
	// The same workflow resolves timesheet entries via the adapter.
	m, manager, outsider, _ := approvalFixture(t)
	ctx := context.Background()

	entry := workforce.TimesheetEntry{
		ID:          "TS-001",
		UserID:      "USR-EMP-01",
		ProjectID:   "PRJ-01",
		Date:        workforce.Date(2024, time.August, 5),
		Hours:       decimalFromString(t, "7.5"),
		Description: "Sprint work",
		Status:      workforce.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.SaveTimesheetEntry(ctx, entry); err != nil {
		t.Fatalf("save entry: %v", err)
	}

	wf := workforce.NewApprovalWorkflow(workforce.TimesheetResolutions(m))

	if _, err := wf.Resolve(ctx, entry.ID, outsider, workforce.StatusApproved); !errors.Is(err, workforce.ErrNotAuthorized) {
		t.Fatalf("outsider must be refused on entries too, got %v", err)
	}

	resolved, err := wf.Resolve(ctx, entry.ID, manager, workforce.StatusRejected)
	if err != nil {
		t.Fatalf("manager rejection failed: %v", err)
	}
	if resolved.RequestStatus() != workforce.StatusRejected {
		t.Errorf("expected Rejected, got %s", resolved.RequestStatus())
	}
}
