package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldGoalID      = "goal_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldEntity      = "entity"
	FieldEntityID    = "entity_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
	ComponentAnalytics = "analytics"
	ComponentGoal      = "goal"
	ComponentQA        = "qa"
	ComponentCache     = "cache"
)
