package queue

// IngestJobMsg is the payload published for every uploaded document. The
// worker downloads FileKey from object storage and runs the extraction
// and indexing pipeline over it.
type IngestJobMsg struct {
	DocumentID string `json:"document_id"`
	FileKey    string `json:"file_key"`
	FileName   string `json:"file_name"`
	MaxTokens  int    `json:"max_tokens,omitempty"`
}
