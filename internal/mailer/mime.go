package mailer

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"

	"gopkg.in/gomail.v2"
)

const defaultContentType = "application/octet-stream"

// BuildMIME encodes email as an RFC 5322 message. Attachments are read from
// their source path on every call.
func BuildMIME(email *Email) ([]byte, error) {
	m := gomail.NewMessage()
	if email.From != "" {
		m.SetHeader("From", email.From)
	}
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTMLBody)

	for _, a := range email.Attachments {
		m.Attach(a.SourcePath,
			gomail.Rename(a.Filename),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {attachmentContentType(a.Filename, a.ContentType)},
			}),
		)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write message: %w", err)
	}
	return buf.Bytes(), nil
}

// attachmentContentType uses the declared type when it parses, otherwise
// guesses from the file extension.
func attachmentContentType(filename, declared string) string {
	mediaType, params, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType, params = guessContentType(filename), map[string]string{}
	}
	params["name"] = filename

	if ct := mime.FormatMediaType(mediaType, params); ct != "" {
		return ct
	}
	return defaultContentType
}

func guessContentType(filename string) string {
	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		return defaultContentType
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return defaultContentType
	}
	return mediaType
}
