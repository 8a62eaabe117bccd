package variables

import (
	"encoding/json"
	"time"
)

// Type is the declared value type of a variable.
type Type string

const (
	TypeString     Type = "string"
	TypeNumber     Type = "number"
	TypeBoolean    Type = "boolean"
	TypeJSON       Type = "json"
	TypeArray      Type = "array"
	TypeExpression Type = "expression"
	TypeSecret     Type = "secret"
	TypeDate       Type = "date"
)

// Scope controls where a variable is visible.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeWorkflow Scope = "workflow"
	ScopeUser     Scope = "user"
)

// Variable is a stored user variable. Value is kept as raw JSON so the
// caller decides how to interpret it per Type; secret values come back
// masked from the API.
type Variable struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Type        Type            `json:"type"`
	Scope       Scope           `json:"scope"`
	WorkflowID  string          `json:"workflowId,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	IsSecret    bool            `json:"isSecret"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Input is the payload for creating or updating a variable.
type Input struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Type        Type            `json:"type"`
	Scope       Scope           `json:"scope"`
	WorkflowID  string          `json:"workflowId,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	IsSecret    bool            `json:"isSecret,omitempty"`
}

// Filter narrows List and Export results. Zero-valued fields are not
// sent; IsSecret is tri-state so listings can select secret-only,
// non-secret or both.
type Filter struct {
	Scope      Scope
	Type       Type
	WorkflowID string
	Search     string
	Tags       []string
	IsSecret   *bool
	Page       int
	Limit      int
}

// ValidationIssue is a single field problem reported by the server.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of server-side validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// Conflict is a variable that differs between the client and the
// server. Sync reports conflicts; it never resolves them on its own.
type Conflict struct {
	Key    string   `json:"key"`
	Local  Variable `json:"local"`
	Remote Variable `json:"remote"`
}

// SyncResult summarizes a sync run.
type SyncResult struct {
	Synced    []Variable `json:"synced"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Errors    []string   `json:"errors,omitempty"`
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatEnv  ExportFormat = "env"
)
