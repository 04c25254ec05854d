package summarizer

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
	"github.com/yanqian/doc-summarizer/pkg/metrics"
)

// Processing bounds accepted from callers.
const (
	MinChunkSize     = 2000
	MaxChunkSize     = 6000
	DefaultChunkSize = 4000

	MinChunkOverlap     = 200
	MaxChunkOverlap     = 1000
	DefaultChunkOverlap = 500
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProcessingConfig controls how long documents are split.
type ProcessingConfig struct {
	ChunkSize    int `json:"chunkSize" validate:"gte=2000,lte=6000"`
	ChunkOverlap int `json:"chunkOverlap" validate:"gte=200,lte=1000,ltfield=ChunkSize"`
}

// DefaultProcessingConfig returns the 4000/500 defaults.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

// WithDefaults fills zero fields from defaults.
func (c ProcessingConfig) WithDefaults(defaults ProcessingConfig) ProcessingConfig {
	if c.ChunkSize == 0 {
		c.ChunkSize = defaults.ChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = defaults.ChunkOverlap
	}
	return c
}

// Validate enforces the bounds and overlap < size.
func (c ProcessingConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(CodeInvalidInput, "invalid processing config", err)
	}
	return nil
}

// Bounds describes the accepted processing ranges.
type Bounds struct {
	ChunkSize    [2]int `json:"chunkSize"`
	ChunkOverlap [2]int `json:"chunkOverlap"`
}

// ProcessingBounds returns the accepted ranges.
func ProcessingBounds() Bounds {
	return Bounds{
		ChunkSize:    [2]int{MinChunkSize, MaxChunkSize},
		ChunkOverlap: [2]int{MinChunkOverlap, MaxChunkOverlap},
	}
}

// Chunk is a contiguous slice of a document's text.
type Chunk struct {
	Index      int    `json:"index"`
	Text       string `json:"-"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Runes      int    `json:"runes"`
	TokenCount int    `json:"tokenCount,omitempty"`
}

// ChunkSummary is the generated summary of the chunk at Index.
type ChunkSummary struct {
	Index int
	Text  string
}

// Path records whether a run summarized the document whole or in chunks.
type Path string

const (
	PathSingle Path = "single"
	PathMulti  Path = "multi"
)

// FinalSummary is the outcome of a successful run.
type FinalSummary struct {
	Text         string
	Path         Path
	Chunks       int
	Summarized   int
	FailedChunks []int
	Usage        metrics.TokenUsage
}

// State is a node of the run state machine.
type State string

const (
	StateIdle                   State = "idle"
	StateExtracting             State = "extracting"
	StateSingleChunkSummarizing State = "single_chunk_summarizing"
	StateMultiChunkSummarizing  State = "multi_chunk_summarizing"
	StateSynthesizing           State = "synthesizing"
	StateDone                   State = "done"
	StateFailed                 State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Progress is emitted on every state change and for every chunk.
type Progress struct {
	State       State  `json:"state"`
	Percent     int    `json:"percent"`
	Chunk       int    `json:"chunk,omitempty"`
	TotalChunks int    `json:"totalChunks,omitempty"`
	Message     string `json:"message"`
}

// ProgressFunc receives progress updates synchronously.
type ProgressFunc func(Progress)

// Stats compares the summary with the source text.
type Stats struct {
	OriginalCharacters int     `json:"originalCharacters"`
	SummaryCharacters  int     `json:"summaryCharacters"`
	CompressionPercent float64 `json:"compressionPercent"`
	ReadingMinutes     int     `json:"readingMinutes"`
}

// Result is returned to callers and kept for download during the session.
type Result struct {
	ID           uuid.UUID           `json:"id"`
	Document     document.Info       `json:"document"`
	Summary      string              `json:"summary"`
	Path         Path                `json:"path"`
	Chunks       int                 `json:"chunks"`
	Summarized   int                 `json:"summarizedChunks"`
	FailedChunks []int               `json:"failedChunks,omitempty"`
	Config       ProcessingConfig    `json:"config"`
	Stats        Stats               `json:"stats"`
	TokenUsage   *metrics.TokenUsage `json:"tokenUsage,omitempty"`
	DownloadName string              `json:"downloadName"`
	DurationMs   int64               `json:"durationMs"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// Status reports readiness and the accepted inputs.
type Status struct {
	CredentialConfigured bool             `json:"credentialConfigured"`
	Model                string           `json:"model"`
	SupportedFormats     []string         `json:"supportedFormats"`
	Defaults             ProcessingConfig `json:"defaults"`
	Bounds               Bounds           `json:"bounds"`
}

// Config wires service level settings.
type Config struct {
	CredentialConfigured bool
	Model                string
	Defaults             ProcessingConfig
}

// StreamEvent is one update on a streamed run. Exactly one field is set.
type StreamEvent struct {
	Progress *Progress   `json:"progress,omitempty"`
	Result   *Result     `json:"result,omitempty"`
	Error    *EventError `json:"error,omitempty"`
}

// EventError describes a terminal failure on a streamed run.
type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
