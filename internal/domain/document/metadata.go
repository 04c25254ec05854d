package document

// MetadataKind names the variant held by a Metadata value.
type MetadataKind string

const (
	MetadataKindPDF  MetadataKind = "pdf"
	MetadataKindDOCX MetadataKind = "docx"
	MetadataKindNone MetadataKind = "none"
)

// Metadata is a closed set of per-format metadata variants.
type Metadata interface {
	Kind() MetadataKind
	metadata()
}

// PDFMetadata is read from the PDF trailer's Info dictionary.
type PDFMetadata struct {
	Pages  int
	Title  string
	Author string
}

// DOCXMetadata is read from the package's core properties.
type DOCXMetadata struct {
	Paragraphs int
	Tables     int
	Title      string
	Author     string
}

// EstimatedPages approximates pages at twenty paragraphs per page.
func (m DOCXMetadata) EstimatedPages() int {
	return m.Paragraphs / 20
}

// NoMetadata is used for plain text and markdown.
type NoMetadata struct{}

func (PDFMetadata) Kind() MetadataKind  { return MetadataKindPDF }
func (DOCXMetadata) Kind() MetadataKind { return MetadataKindDOCX }
func (NoMetadata) Kind() MetadataKind   { return MetadataKindNone }

func (PDFMetadata) metadata()  {}
func (DOCXMetadata) metadata() {}
func (NoMetadata) metadata()   {}
