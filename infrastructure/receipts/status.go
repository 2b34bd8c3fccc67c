package receipts

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"

	"stockreceipter/infrastructure/audit"
	"stockreceipter/models"
)

type machine[S ~string] struct {
	kind  string
	edges map[S][]S
}

func (m machine[S]) known(s S) bool {
	_, ok := m.edges[s]
	return ok
}

func (m machine[S]) terminal(s S) bool {
	return m.known(s) && len(m.edges[s]) == 0
}

func (m machine[S]) check(from, to S) error {
	if !m.known(to) {
		return fmt.Errorf("%w: unknown %s status %q", ErrInvalidTransition, m.kind, to)
	}
	if m.terminal(from) {
		return fmt.Errorf("%w: %s receipt is %s", ErrTerminalStatus, m.kind, from)
	}
	if !slices.Contains(m.edges[from], to) {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, m.kind, from, to)
	}
	return nil
}

var importMachine = machine[models.ImportStatus]{
	kind: "import",
	edges: map[models.ImportStatus][]models.ImportStatus{
		models.ImportDraft:      {models.ImportProcessing, models.ImportWaiting, models.ImportCancelled},
		models.ImportProcessing: {models.ImportDraft, models.ImportWaiting, models.ImportCancelled},
		models.ImportWaiting:    {models.ImportProcessing, models.ImportCompleted, models.ImportCancelled},
		models.ImportCompleted:  nil,
		models.ImportCancelled:  nil,
	},
}

var checkMachine = machine[models.CheckStatus]{
	kind: "check",
	edges: map[models.CheckStatus][]models.CheckStatus{
		models.CheckPending:   {models.CheckChecking, models.CheckCancelled, models.CheckBalanced},
		models.CheckChecking:  {models.CheckPending, models.CheckCancelled, models.CheckBalanced},
		models.CheckBalanced:  nil,
		models.CheckCancelled: nil,
	},
}

// ValidImportStatus reports whether s is a known import status.
func ValidImportStatus(s models.ImportStatus) bool { return importMachine.known(s) }

// ValidCheckStatus reports whether s is a known check status.
func ValidCheckStatus(s models.CheckStatus) bool { return checkMachine.known(s) }

// CheckClosed reports whether a check receipt no longer accepts counts.
func CheckClosed(s models.CheckStatus) bool { return checkMachine.terminal(s) }

// ImportTransition is the result of moving an import receipt to a new status.
type ImportTransition struct {
	From       models.ImportStatus
	Status     models.ImportStatus
	ChangeLogs models.ChangeLog
	// Totals is set when the transition recomputed the header from items.
	Totals *Totals
	// Notify is set for COMPLETED; delivery happens after commit.
	Notify bool
	// Changed is false for a same-status request.
	Changed bool
}

// Apply copies the outcome onto r.
func (t ImportTransition) Apply(r *models.ReceiptImport) {
	r.Status = t.Status
	r.ChangeLogs = t.ChangeLogs
	if t.Totals != nil {
		t.Totals.Apply(r)
	}
}

// TransitionImport validates and executes a status change for r inside tx.
//
// Moving to WAITING requires at least one stored item and recomputes totals
// from the items visible to tx. r itself is not modified.
func TransitionImport(ctx context.Context, tx bun.IDB, r *models.ReceiptImport, to models.ImportStatus, user string, at time.Time) (ImportTransition, error) {
	out := ImportTransition{From: r.Status, Status: r.Status, ChangeLogs: r.ChangeLogs}
	if to == r.Status {
		return out, nil
	}
	if err := importMachine.check(r.Status, to); err != nil {
		return out, err
	}

	switch to {
	case models.ImportWaiting:
		items, err := LoadItems(ctx, tx, r.ID)
		if err != nil {
			return out, err
		}
		if len(items) == 0 {
			return out, fmt.Errorf("receipt %s: %w", r.ReceiptNumber, ErrNoItems)
		}
		totals := Summarize(items)
		out.Totals = &totals
	case models.ImportCompleted:
		out.Notify = true
	}

	out.Status = to
	out.ChangeLogs = r.ChangeLogs.Append(audit.StatusChange(user, string(r.Status), string(to), at))
	out.Changed = true
	return out, nil
}

// CheckTransition is the result of moving a check receipt to a new status.
type CheckTransition struct {
	From         models.CheckStatus
	Status       models.CheckStatus
	ChangeLogs   models.ChangeLog
	ActivityLogs models.ActivityLog
	Changed      bool
}

func (t CheckTransition) Apply(r *models.ReceiptCheck) {
	r.Status = t.Status
	r.ChangeLogs = t.ChangeLogs
	r.ActivityLogs = t.ActivityLogs
}

// TransitionCheck handles the generic update path. BALANCED is rejected
// here; use BalanceCheck.
func TransitionCheck(r *models.ReceiptCheck, to models.CheckStatus, user string, at time.Time) (CheckTransition, error) {
	out := CheckTransition{From: r.Status, Status: r.Status, ChangeLogs: r.ChangeLogs, ActivityLogs: r.ActivityLogs}
	if to == r.Status {
		return out, nil
	}
	if to == models.CheckBalanced {
		return out, ErrBalanceOnly
	}
	if err := checkMachine.check(r.Status, to); err != nil {
		return out, err
	}
	out.Status = to
	out.ChangeLogs = r.ChangeLogs.Append(audit.StatusChange(user, string(r.Status), string(to), at))
	out.Changed = true
	return out, nil
}

// BalanceCheck moves r to BALANCED and records both the status change and
// the status activity entry. A receipt already BALANCED or CANCELLED fails.
func BalanceCheck(r *models.ReceiptCheck, user string, at time.Time) (CheckTransition, error) {
	out := CheckTransition{From: r.Status, Status: r.Status, ChangeLogs: r.ChangeLogs, ActivityLogs: r.ActivityLogs}
	if err := checkMachine.check(r.Status, models.CheckBalanced); err != nil {
		return out, err
	}
	out.Status = models.CheckBalanced
	out.ChangeLogs = r.ChangeLogs.Append(audit.StatusChange(user, string(r.Status), string(models.CheckBalanced), at))
	out.ActivityLogs = r.ActivityLogs.Append(audit.FieldActivities(user, []string{"status"}, at)...)
	out.Changed = true
	return out, nil
}
