package model

// Attachment is a file shared by every message of a batch. SourcePath is
// read each time a message is built; the bytes are never persisted.
type Attachment struct {
	Filename    string `json:"filename"`
	SourcePath  string `json:"-"`
	ContentType string `json:"content_type,omitempty"`
}

// AttachmentMetadata is what a campaign record keeps about an attachment.
type AttachmentMetadata struct {
	Filename    string `bson:"filename" json:"filename"`
	ContentType string `bson:"content_type,omitempty" json:"content_type,omitempty"`
}

// UploadedFile describes a multipart upload spooled to disk.
type UploadedFile struct {
	Name        string
	Path        string
	ContentType string
	Size        int64
}
