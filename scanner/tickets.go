package scanner

import (
	"community-bot/model"
	"community-bot/utils"
	"context"
	"fmt"
	"strings"
)

// AutoCloseTickets closes open tickets idle for longer than the configured
// auto-close window. A zero window disables it.
func (m *Maintenance) AutoCloseTickets(ctx context.Context) ([]model.Ticket, error) {
	if m.cfg.TicketAutoClose <= 0 {
		return nil, nil
	}
	start := m.now()
	defer m.metrics.ObserveTask("ticket_autoclose", start)

	closed, err := m.desk.CloseInactive(ctx, start.Add(-m.cfg.TicketAutoClose), SystemActor)
	if err != nil {
		utils.LogError(m.log, m.logChannel(), "Tickets", "AutoClose", fmt.Sprintf("Failed to auto-close tickets: %v", err))
		return nil, err
	}
	if len(closed) == 0 {
		return nil, nil
	}

	ids := make([]string, len(closed))
	for i, t := range closed {
		ids[i] = t.ID
	}
	utils.LogInfo(m.log, m.logChannel(), "Tickets", "AutoClose",
		fmt.Sprintf("Closed %d inactive tickets: %s", len(closed), strings.Join(ids, ", ")))
	return closed, nil
}
