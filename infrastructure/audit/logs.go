package audit

import (
	"fmt"
	"time"

	"stockreceipter/models"
)

// fieldActions describes edits to check-receipt fields; %s is the user.
var fieldActions = map[string]string{
	"periodic":  "%s changed the check period",
	"note":      "%s changed the note",
	"warehouse": "%s changed the warehouse",
	"supplier":  "%s changed the supplier",
	"date":      "%s changed the check date",
	"status":    "%s changed the status",
	"checker":   "%s changed the checker",
}

// StatusChange builds the change-log entry for one executed transition.
func StatusChange(user, oldStatus, newStatus string, at time.Time) models.ChangeLogEntry {
	return models.ChangeLogEntry{
		User:      user,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Timestamp: at.UTC(),
	}
}

// FieldActivities builds one activity entry per touched field, in the given
// order. Field names without a description produce no entry.
func FieldActivities(user string, fields []string, at time.Time) []models.ActivityLogEntry {
	out := make([]models.ActivityLogEntry, 0, len(fields))
	for _, f := range fields {
		tmpl, ok := fieldActions[f]
		if !ok {
			continue
		}
		out = append(out, models.ActivityLogEntry{
			User:      user,
			Action:    fmt.Sprintf(tmpl, user),
			Timestamp: at.UTC(),
		})
	}
	return out
}
