package export

import "time"

// Supported export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Export records one rendered report stored in the object store.
type Export struct {
	ID          string
	SessionID   string
	UserID      string
	Format      string
	FileName    string
	StorageKey  string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}
