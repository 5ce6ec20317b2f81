package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldDuration       = "duration_ms"
	FieldRunID          = "run_id"
	FieldBudgetID       = "budget_id"
	FieldUserID         = "user_id"
	FieldAccountID      = "account_id"
	FieldOutcome        = "outcome"
	FieldPercentageUsed = "percentage_used"
	FieldSpent          = "spent"
	FieldBudgetAmount   = "budget_amount"
	FieldMonth          = "month"
	FieldRecipient      = "recipient"
	FieldMessageID      = "message_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentScheduler = "scheduler"
	ComponentEvaluator = "budget_alerts"
	ComponentNotify    = "notify"
	ComponentLock      = "lock"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)
