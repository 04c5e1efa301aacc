package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/mailmerge-backend/internal/model"
)

func TestNormalizeAttachments(t *testing.T) {
	report := model.UploadedFile{Name: "report.pdf", Path: "/tmp/up/1", ContentType: "application/pdf"}
	logo := model.UploadedFile{Name: "logo.png", Path: "/tmp/up/2"}

	tests := []struct {
		name string
		raw  any
		want []model.Attachment
	}{
		{"nil", nil, []model.Attachment{}},
		{"empty list", []model.UploadedFile{}, []model.Attachment{}},
		{
			"single value",
			report,
			[]model.Attachment{{Filename: "report.pdf", SourcePath: "/tmp/up/1", ContentType: "application/pdf"}},
		},
		{
			"single pointer",
			&logo,
			[]model.Attachment{{Filename: "logo.png", SourcePath: "/tmp/up/2"}},
		},
		{"nil pointer", (*model.UploadedFile)(nil), []model.Attachment{}},
		{
			"list keeps order and drops incomplete",
			[]model.UploadedFile{logo, {Name: "", Path: "/tmp/up/3"}, {Name: "x.txt"}, report},
			[]model.Attachment{
				{Filename: "logo.png", SourcePath: "/tmp/up/2"},
				{Filename: "report.pdf", SourcePath: "/tmp/up/1", ContentType: "application/pdf"},
			},
		},
		{
			"pointer list skips nil",
			[]*model.UploadedFile{nil, &report},
			[]model.Attachment{{Filename: "report.pdf", SourcePath: "/tmp/up/1", ContentType: "application/pdf"}},
		},
		{"unsupported type", "report.pdf", []model.Attachment{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAttachments(tt.raw))
		})
	}
}

func TestAttachmentMetadataOf(t *testing.T) {
	assert.Nil(t, AttachmentMetadataOf(nil))

	meta := AttachmentMetadataOf([]model.Attachment{{Filename: "a.pdf", SourcePath: "/tmp/a", ContentType: "application/pdf"}})
	assert.Equal(t, []model.AttachmentMetadata{{Filename: "a.pdf", ContentType: "application/pdf"}}, meta)
}
