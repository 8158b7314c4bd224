package database

// ImageRecord is one stored upload together with the labels detected on it.
type ImageRecord struct {
	ID      int64        `db:"id" json:"id"`
	Message string       `db:"message" json:"message"`
	Label   string       `db:"label" json:"label"`
	Objects []string     `db:"objects" json:"objects"` // serialized as JSON text in storage
	File    FileMetadata `db:"file" json:"file"`       // serialized as JSON text in storage
}

// FileMetadata describes where and how an uploaded file was stored.
type FileMetadata struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	Encoding     string `json:"encoding"`
	MimeType     string `json:"mimetype"`
	Destination  string `json:"destination"`
	FileName     string `json:"filename"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}
