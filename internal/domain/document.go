package domain

// Document represents a local text file stored in the search index.
// The document ID is the file's absolute path at indexing time.
type Document struct {
	// Path is the file path relative to the index's base directory, or
	// absolute when the file lies outside of it.
	// Example: "notes/todo.txt"
	Path string `json:"path"`

	// Encoding is the name of the text encoding the file was decoded with.
	// Example: "utf-8", "windows-1252"
	Encoding string `json:"encoding"`

	// Content is the decoded file text. It is analyzed but never stored.
	Content string `json:"content"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	FieldPath     = "path"
	FieldEncoding = "encoding"
	FieldContent  = "content"
)
