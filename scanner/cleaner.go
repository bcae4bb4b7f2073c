package scanner

import (
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"fmt"
	"log"
)

// CleanupReport counts the rows removed by one Cleanup pass.
type CleanupReport struct {
	ActionLogs    int64
	ClosedTickets int64
}

// Cleanup deletes staff action logs and closed tickets older than the log
// retention period. Violation records are never deleted.
func (m *Maintenance) Cleanup(ctx context.Context) (*CleanupReport, error) {
	start := m.now()
	defer m.metrics.ObserveTask("cleanup", start)

	cutoff := start.Add(-m.cfg.LogRetention)
	log.Printf("Starting cleanup of data older than %s...", cutoff.Format("2006-01-02"))

	report := &CleanupReport{}
	var err error
	report.ActionLogs, err = database.PurgeActionLogs(ctx, m.db, cutoff)
	if err != nil {
		utils.LogError(m.log, m.logChannel(), "Cleanup", "ActionLogs", fmt.Sprintf("Error cleaning old action logs: %v", err))
		return report, err
	}

	report.ClosedTickets, err = m.desk.PurgeClosed(ctx, cutoff)
	if err != nil {
		utils.LogError(m.log, m.logChannel(), "Cleanup", "Tickets", fmt.Sprintf("Error cleaning old tickets: %v", err))
		return report, err
	}

	if report.ActionLogs > 0 || report.ClosedTickets > 0 {
		utils.LogInfo(m.log, m.logChannel(), "Cleanup", "Success",
			fmt.Sprintf("Deleted %d action logs and %d closed tickets", report.ActionLogs, report.ClosedTickets))
	}
	log.Println("Finished cleanup.")
	return report, nil
}
