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
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldOwnerID     = "owner_id"
	FieldReportID    = "report_id"
	FieldFormat      = "format"
	FieldPeriod      = "period"
	FieldLocation    = "location"
	FieldSizeBytes   = "size_bytes"
	FieldTxCount     = "transaction_count"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentReport  = "report"
	ComponentChart   = "chart"
	ComponentPDF     = "pdf"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentMail    = "mail"
	ComponentInsight = "insight"
)

// Operations defines standard operation names
const (
	OpGenerate = "generate"
	OpRender   = "render"
	OpCompose  = "compose"
	OpExport   = "export"
	OpPersist  = "persist"
	OpDownload = "download"
	OpList     = "list"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpBatch    = "batch"
	OpNotify   = "notify"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
