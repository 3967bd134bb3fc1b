package share

import (
	"context"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
	"budgetbook/internal/report"
)

// ReportPublisher is implemented by *amqp.Client.
type ReportPublisher interface {
	PublishReport(ctx context.Context, msg *amqp.ReportMessage) error
}

// AMQPPresenter publishes reports to the message broker.
type AMQPPresenter struct {
	publisher ReportPublisher
	logger    *log.Logger
}

func NewAMQPPresenter(publisher ReportPublisher, logger *log.Logger) *AMQPPresenter {
	return &AMQPPresenter{publisher: publisher, logger: componentLogger(logger)}
}

func (p *AMQPPresenter) Present(ctx context.Context, text, title string) {
	msg := amqp.NewReportMessage(title, report.MonthYearFromTitle(title), text)
	if err := p.publisher.PublishReport(ctx, msg); err != nil {
		p.logger.Failure(ctx, "Failed to publish report", err,
			log.FieldTitle, title, log.FieldTarget, "amqp", log.FieldErrorType, log.ErrorTypeNetwork)
		return
	}
	p.logger.InfoContext(ctx, "Shared report", log.FieldTitle, title, log.FieldMessageID, msg.ID)
}

// ReportSheetWriter is implemented by *google.Client.
type ReportSheetWriter interface {
	WriteReport(ctx context.Context, title, body string) (string, error)
}

// SheetsPresenter writes reports into a spreadsheet tab.
type SheetsPresenter struct {
	writer ReportSheetWriter
	logger *log.Logger
}

func NewSheetsPresenter(writer ReportSheetWriter, logger *log.Logger) *SheetsPresenter {
	return &SheetsPresenter{writer: writer, logger: componentLogger(logger)}
}

func (p *SheetsPresenter) Present(ctx context.Context, text, title string) {
	ref, err := p.writer.WriteReport(ctx, title, text)
	if err != nil {
		p.logger.Failure(ctx, "Failed to write report to sheet", err,
			log.FieldTitle, title, log.FieldTarget, "sheets", log.FieldErrorType, log.ErrorTypeNetwork)
		return
	}
	p.logger.InfoContext(ctx, "Shared report", log.FieldTitle, title, "range", ref)
}
