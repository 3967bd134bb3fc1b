package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldErrorType    = "error_type"
	FieldOperation    = "operation"
	FieldBackend      = "backend"
	FieldTarget       = "target"
	FieldPath         = "path"
	FieldBytes        = "bytes"
	FieldMonthYear    = "month_year"
	FieldMonthIndex   = "month_index"
	FieldMonthCount   = "month_count"
	FieldExpenseIndex = "expense_index"
	FieldExpenseDesc  = "expense_description"
	FieldAmount       = "amount"
	FieldDeferred     = "deferred"
	FieldTitle        = "title"
	FieldMessageID    = "message_id"
	FieldDuration     = "duration_ms"
)

// Components defines standard component names
const (
	ComponentController  = "controller"
	ComponentConsole     = "console"
	ComponentPersistence = "persistence"
	ComponentShare       = "share"
	ComponentAMQP        = "amqp"
	ComponentSheets      = "sheets"
	ComponentWorker      = "worker"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names
const (
	OpLoad      = "load"
	OpSave      = "save"
	OpAddExp    = "add_expense"
	OpRemoveExp = "remove_expense"
	OpRestore   = "restore_expense"
	OpEditExp   = "edit_expense"
	OpSetStart  = "set_starting_amount"
	OpAddMonth  = "add_month"
	OpDelMonth  = "delete_month"
	OpSelect    = "select_month"
	OpImport    = "import"
	OpOverwrite = "overwrite"
	OpExport    = "export"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeUnreadable    = "unreadable_source"
	ErrorTypeMalformed     = "malformed_report"
	ErrorTypeContract      = "contract_violation"
	ErrorTypeNetwork       = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithMonth adds month-related fields
func (f LogFields) WithMonth(monthYear string, index int) LogFields {
	f[FieldMonthYear] = monthYear
	f[FieldMonthIndex] = index
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(index int, desc, amount string, deferred bool) LogFields {
	f[FieldExpenseIndex] = index
	f[FieldExpenseDesc] = desc
	f[FieldAmount] = amount
	f[FieldDeferred] = deferred
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
