package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware keys)
	FieldUserID   = "user_id"
	FieldTenantID = "tenant_id"

	// Service
	FieldService     = "service"
	FieldEnvironment = "environment"
	FieldInstance    = "instance"

	// Identifiers
	FieldEntityType = "entity_type"
	FieldIDFormat   = "id_format"
	FieldID         = "id"
	FieldCount      = "count"

	// gRPC
	FieldGRPCMethod = "grpc_method"
	FieldGRPCCode   = "grpc_code"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
