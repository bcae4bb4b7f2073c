package scanner

import (
	"community-bot/ledger"
	"community-bot/utils"
	"context"
	"fmt"
	"log"
	"strings"
)

// maxReportedFailures caps how many failed record ids go into one log message.
const maxReportedFailures = 10

// SweepExpired expires every violation record that is past its expiry.
// Records that fail to update are reported to the log channel and retried on
// the next sweep.
func (m *Maintenance) SweepExpired(ctx context.Context) (*ledger.ExpiryReport, error) {
	start := m.now()
	defer m.metrics.ObserveTask("expiry_sweep", start)

	report, err := m.ledger.ExpireDueRecords(ctx, start)
	if err != nil {
		utils.LogError(m.log, m.logChannel(), "ExpirySweep", "Sweep", fmt.Sprintf("Expiry sweep aborted after %d records: %v", expiredSoFar(report), err))
		return report, err
	}

	if len(report.Failures) > 0 {
		utils.LogWarn(m.log, m.logChannel(), "ExpirySweep", "Failures", describeFailures(report))
	}
	if report.Expired > 0 {
		log.Printf("Expiry sweep expired %d violation records", report.Expired)
	}
	return report, nil
}

func expiredSoFar(report *ledger.ExpiryReport) int {
	if report == nil {
		return 0
	}
	return report.Expired
}

func describeFailures(report *ledger.ExpiryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expired %d records, %d failed:", report.Expired, len(report.Failures))
	for i, f := range report.Failures {
		if i == maxReportedFailures {
			fmt.Fprintf(&b, "\n...and %d more", len(report.Failures)-maxReportedFailures)
			break
		}
		fmt.Fprintf(&b, "\n`%s`: %v", f.RecordID, f.Err)
	}
	return b.String()
}
