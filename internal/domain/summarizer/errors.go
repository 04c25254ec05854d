package summarizer

import "github.com/yanqian/doc-summarizer/internal/domain/document"

// Error codes surfaced by a summarization run.
const (
	CodeUnsupportedFormat = document.CodeUnsupportedFormat
	CodeExtractionFailure = document.CodeExtractionFailure
	CodeMissingCredential = "missing_credential"
	CodeGenerationFailure = "generation_failure"
	CodeEmptyResult       = "empty_result"
	CodeInvalidInput      = "invalid_input"
	CodeNotFound          = "not_found"
)
