package worker

import (
	"context"
	"fmt"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
	"budgetbook/internal/report"
	"budgetbook/internal/share"
)

// ArchiveWorker stores shared reports received from the broker as text
// files, one per report title. A later report with the same title
// replaces the earlier file.
type ArchiveWorker struct {
	dir    string
	logger *log.Logger
}

func NewArchiveWorker(dir string, logger *log.Logger) *ArchiveWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ArchiveWorker{dir: dir, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleReportMessage archives one message. Bodies that are not expense
// reports are dropped with a warning; only write failures are returned so
// the message is redelivered.
func (w *ArchiveWorker) HandleReportMessage(ctx context.Context, msg *amqp.ReportMessage) error {
	logger := w.logger.With(log.FieldMessageID, msg.ID, log.FieldTitle, msg.Title)

	month, err := report.Parse(msg.Body)
	if err != nil {
		logger.WarnContext(ctx, "Skipping message that is not an expense report",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeMalformed)
		return nil
	}

	title := msg.Title
	if title == "" {
		title = report.Title(month)
	}
	if msg.MonthYear != "" && msg.MonthYear != month.MonthYear {
		logger.WarnContext(ctx, "Message month differs from report body",
			"message_month", msg.MonthYear,
			log.FieldMonthYear, month.MonthYear)
	}

	path, err := share.WriteReportFile(ctx, w.dir, title, msg.Body)
	if err != nil {
		return fmt.Errorf("archive report %s: %w", msg.ID, err)
	}

	logger.InfoContext(ctx, "Archived report",
		log.FieldPath, path,
		log.FieldMonthYear, month.MonthYear,
		"expenses", len(month.Expenses),
		"sent_at", msg.Timestamp)
	return nil
}
