package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskType identifies the kind of completion being requested. The task type
// also determines the cache category and its TTL policy.
type TaskType string

const (
	TaskTitleVariants       TaskType = "title-variants"
	TaskDescriptionVariants TaskType = "description-variants"
	TaskKeywordSuggestions  TaskType = "keyword-suggestions"
	TaskFreeText            TaskType = "free-text"
)

// CompletionRequest is the provider-agnostic request value object. The task
// type plus payload form the cache key material after canonicalization;
// Identity is attribution-only and excluded from the key.
type CompletionRequest struct {
	Task    TaskType          `json:"task" validate:"required,oneof=title-variants description-variants keyword-suggestions free-text"`
	Payload map[string]string `json:"payload" validate:"required,min=1"`

	// MaxLength caps candidate length in characters. Zero means the task
	// default applies.
	MaxLength int `json:"max_length,omitempty" validate:"omitempty,gt=0"`

	// VariantCount is the number of candidates requested for variant tasks.
	// Zero means the configured default applies.
	VariantCount int `json:"variant_count,omitempty" validate:"omitempty,min=1,max=10"`

	// Identity is the caller-supplied identity/tier, passed through to the
	// usage ledger for attribution only.
	Identity string `json:"-"`
}

var completionValidator = validator.New()

// Validate checks the request against its field constraints.
func (r *CompletionRequest) Validate() error {
	return completionValidator.Struct(r)
}

// Category returns the cache category for this request's task.
func (r *CompletionRequest) Category() string {
	return string(r.Task)
}

// CompletionResult is the immutable outcome of one orchestrated completion.
type CompletionResult struct {
	// Candidates holds the generated texts in the order the provider
	// returned them. Non-variant tasks produce a single candidate.
	Candidates []string `json:"candidates"`

	// Provider identifies the adapter that served the completion. Cache hits
	// retain the provider recorded at write time.
	Provider string `json:"provider"`

	// ServedFromCache reports whether the result came from the cache store.
	ServedFromCache bool `json:"served_from_cache"`

	// Duration is the wall-clock time of the call as observed by the caller.
	Duration time.Duration `json:"duration"`
}

// Variant is one post-validated, deterministically scored candidate.
type Variant struct {
	Text      string  `json:"text"`
	Truncated bool    `json:"truncated"`
	Score     float64 `json:"score"` // 0-100, deterministic quality sub-score
}

// VariantSet is the ranked output of the variant generator.
type VariantSet struct {
	Task            TaskType      `json:"task"`
	Variants        []Variant     `json:"variants"` // sorted best score first
	Provider        string        `json:"provider"`
	ServedFromCache bool          `json:"served_from_cache"`
	Fallback        bool          `json:"fallback"` // true when template candidates were used
	Duration        time.Duration `json:"duration"`
}
