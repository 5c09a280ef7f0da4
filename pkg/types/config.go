package types

import "time"

// DefaultMaxChars is the batch budget used when none is configured.
const DefaultMaxChars = 3000

// BatchConfig holds settings for the batch packer.
type BatchConfig struct {
	// MaxChars is the maximum number of extracted characters per batch
	// (default 3000). A single file larger than this is sent on its own.
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`
}

// OCRBackend identifies how image files are recognised.
type OCRBackend string

const (
	OCRTesseract OCRBackend = "tesseract"
	OCRContainer OCRBackend = "container"
)

// OCRConfig holds settings for optical character recognition.
type OCRConfig struct {
	// Backend selects the OCR strategy: tesseract (local binary) or
	// container (tesseract image run through docker or podman).
	Backend OCRBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Tesseract is the tesseract binary name or absolute path.
	Tesseract string `json:"tesseract" yaml:"tesseract" mapstructure:"tesseract"`

	// Lang is the tesseract language code (default "eng").
	Lang string `json:"lang" yaml:"lang" mapstructure:"lang"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// Pricing converts token usage into a cost estimate. Rates are per
// thousand tokens.
type Pricing struct {
	InputPer1K  float64 `json:"input_per_1k" yaml:"input_per_1k" mapstructure:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k" yaml:"output_per_1k" mapstructure:"output_per_1k"`
}

// Cost returns the estimated cost of one completion.
func (p Pricing) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)/1000*p.InputPer1K + float64(completionTokens)/1000*p.OutputPer1K
}

// TransformConfig holds settings for the language-model stage.
type TransformConfig struct {
	// Model is the chat model identifier (e.g. "gpt-3.5-turbo").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the root of an OpenAI-compatible API.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the bearer token for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// PromptFile is the path of the prompt template. Empty selects the
	// built-in template.
	PromptFile string `json:"prompt_file" yaml:"prompt_file" mapstructure:"prompt_file"`

	// Timeout bounds a single HTTP request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on 429 and 5xx responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	Pricing Pricing `json:"pricing" yaml:"pricing" mapstructure:"pricing"`
}

// StoreBackend identifies the KeyedStore implementation.
type StoreBackend string

const (
	StoreJSON   StoreBackend = "json"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for the per-date record store.
type StoreConfig struct {
	// Backend selects json (one file per date) or sqlite.
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Dir is the output directory for date files or the SQLite database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig groups the settings of one compile run.
type PipelineConfig struct {
	// InputDir holds the scanned files.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// Kind selects which files are considered.
	Kind SourceKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Start and End bound the inclusive filename range. Empty means the
	// first and last file of the listing.
	Start string `json:"start,omitempty" yaml:"start,omitempty" mapstructure:"start"`
	End   string `json:"end,omitempty" yaml:"end,omitempty" mapstructure:"end"`

	// Processes is the number of partitions run in parallel (default 1).
	Processes int `json:"processes" yaml:"processes" mapstructure:"processes"`

	// ErrorLog is the append-only transformer failure log.
	ErrorLog string `json:"error_log" yaml:"error_log" mapstructure:"error_log"`

	// ReportPath, when set, receives the run summary as YAML.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty" mapstructure:"report_path"`

	Batch     BatchConfig     `json:"batch" yaml:"batch" mapstructure:"batch"`
	OCR       OCRConfig       `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Transform TransformConfig `json:"transform" yaml:"transform" mapstructure:"transform"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
}
