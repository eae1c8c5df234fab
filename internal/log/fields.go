// Package log provides structured logging on top of log/slog, with the
// standard field and component names used across the binaries.
package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldYear          = "year"
	FieldMonth         = "month"
	FieldProjectID     = "project_id"
	FieldClientID      = "client_id"
	FieldEntryCount    = "entry_count"
	FieldConfigCount   = "config_count"
	FieldBilledCents   = "billed_cents"
	FieldBilledHours   = "billed_hours"
	FieldCarryoverOut  = "carryover_hours"
	FieldUnmatched     = "unmatched_projects"
	FieldSource        = "source"
	FieldSpreadsheetID = "spreadsheet_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentReports  = "reports"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentImporter = "importer"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCompute     = "compute"
	OpImport      = "import"
	OpRecompute   = "recompute"
	OpRollforward = "rollforward"
	OpCompare     = "compare"
	OpList        = "list"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)
