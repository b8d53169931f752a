package workforce

// =============================================================================
// BALANCE LEDGER - Remaining leave and sufficiency checks
// =============================================================================

// BalanceLedger exposes remaining leave balance per type and checks
// whether a requested duration fits. It never mutates balances: the
// source system checks balance at submission time only, and whether
// approval should debit it is an unconfirmed policy decision (see
// DESIGN.md). Balances live on the User record supplied by the
// directory.
type BalanceLedger struct{}

// Remaining returns the user's remaining balance in days for the leave type.
func (BalanceLedger) Remaining(u *User, leaveType LeaveType) int {
	if leaveType == LeaveUnpaid {
		return u.Balance.Unpaid
	}
	return u.Balance.Paid
}

// HasSufficient reports whether requestedDays fits within the remaining
// balance for the leave type.
func (l BalanceLedger) HasSufficient(u *User, leaveType LeaveType, requestedDays int) bool {
	return requestedDays <= l.Remaining(u, leaveType)
}
