// Package idrpc is the wire contract of launch.id.v1.IDService: request and
// response messages, the service descriptor and a client.
package idrpc

type GenerateIDRequest struct {
	Type     string         `json:"type"`
	Format   string         `json:"format,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type GenerateIDResponse struct {
	ID string `json:"id"`
}

type GenerateBatchIDsRequest struct {
	Type     string         `json:"type"`
	Format   string         `json:"format,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Count    int32          `json:"count"`
}

type GenerateBatchIDsResponse struct {
	IDs []string `json:"ids"`
}

type ValidateIDRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
}

type ValidateIDResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type ParseIDRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
}

type ParseIDResponse struct {
	Valid         bool    `json:"valid"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	Format        string  `json:"format,omitempty"`
	EntityType    string  `json:"entity_type,omitempty"`
	Prefix        string  `json:"prefix,omitempty"`
	Timestamp     float64 `json:"timestamp,omitempty"` // seconds
	TimestampMs   int64   `json:"timestamp_ms,omitempty"`
	Nonce         string  `json:"nonce,omitempty"`
	Checksum      string  `json:"checksum,omitempty"`
	MachineID     int64   `json:"machine_id,omitempty"`
	Sequence      int64   `json:"sequence,omitempty"`
	UUIDVersion   int32   `json:"uuid_version,omitempty"`
	UUIDVariant   string  `json:"uuid_variant,omitempty"`
	RandomPayload string  `json:"random_payload,omitempty"`
	IDLength      int32   `json:"id_length,omitempty"`
	Alphabet      string  `json:"alphabet,omitempty"`
}

type ListTypesRequest struct{}

type EntityType struct {
	Type   string `json:"type"`
	Prefix string `json:"prefix"`
}

type ListTypesResponse struct {
	Types         []EntityType `json:"types"`
	Formats       []string     `json:"formats"`
	DefaultFormat string       `json:"default_format"`
}
