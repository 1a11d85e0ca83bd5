package config

// StorageConfig configures the filesystem root C1 reads input documents
// from and writes pipeline tables to.
type StorageConfig struct {
	// BaseDir is the root directory for this storage instance. Required.
	BaseDir string
}

// Input configures C5, document loading.
type Input struct {
	// Storage locates the input documents on disk.
	Storage StorageConfig
	// FileType selects the decoder: text, csv, or json.
	FileType FileType
	// Encoding is the text encoding of input files; empty means UTF-8.
	Encoding string
	// FilePattern is a regular expression matched against each candidate
	// file's path, relative to Storage.BaseDir.
	FilePattern string
	// FileFilter additionally restricts which matched files are loaded,
	// keyed by metadata field name (a named capture group of FilePattern)
	// to a regex matched case-insensitively against that field's value.
	FileFilter map[string]string
	// TextColumn names the CSV/JSON field holding a row's body text. Only
	// meaningful for FileTypeCSV and FileTypeJSON.
	TextColumn string
	// TitleColumn names the CSV/JSON field used as the document's display
	// title; falls back to the file's base name when empty.
	TitleColumn string
	// Metadata lists additional CSV/JSON field names copied verbatim into
	// Document.Metadata, in the given order.
	Metadata []string
}

// DefaultInput returns text-file loading defaults: every .txt file under
// Storage.BaseDir, UTF-8, no metadata filtering.
func DefaultInput() Input {
	return Input{
		FileType:    FileTypeText,
		FilePattern: ".*\\.txt$",
	}
}
