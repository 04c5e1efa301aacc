package service

import (
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// NormalizeAttachments accepts nothing, a single upload or a list of uploads
// and returns them as a flat attachment list. Uploads without a name or a
// path are dropped; the order of the rest is preserved.
func NormalizeAttachments(raw any) []model.Attachment {
	var uploads []model.UploadedFile

	switch v := raw.(type) {
	case nil:
	case model.UploadedFile:
		uploads = []model.UploadedFile{v}
	case *model.UploadedFile:
		if v != nil {
			uploads = []model.UploadedFile{*v}
		}
	case []model.UploadedFile:
		uploads = v
	case []*model.UploadedFile:
		for _, f := range v {
			if f != nil {
				uploads = append(uploads, *f)
			}
		}
	}

	attachments := make([]model.Attachment, 0, len(uploads))
	for _, f := range uploads {
		if f.Name == "" || f.Path == "" {
			continue
		}
		attachments = append(attachments, model.Attachment{
			Filename:    f.Name,
			SourcePath:  f.Path,
			ContentType: f.ContentType,
		})
	}
	return attachments
}

// AttachmentMetadataOf strips the on-disk location from attachments so only
// what a campaign record keeps remains.
func AttachmentMetadataOf(attachments []model.Attachment) []model.AttachmentMetadata {
	if len(attachments) == 0 {
		return nil
	}
	meta := make([]model.AttachmentMetadata, len(attachments))
	for i, a := range attachments {
		meta[i] = model.AttachmentMetadata{Filename: a.Filename, ContentType: a.ContentType}
	}
	return meta
}
