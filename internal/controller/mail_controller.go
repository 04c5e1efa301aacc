package controller

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

const defaultMaxUploadBytes = 25 << 20

// MailSender dispatches a send request for a user.
type MailSender interface {
	SendMails(ctx context.Context, userID string, in service.SendMailsInput) (*model.Campaign, error)
}

type MailController struct {
	Mail           MailSender
	Logger         *zap.Logger
	MaxUploadBytes int64
	// TempDir is where attachments are spooled; empty means os.TempDir.
	TempDir string

	inflight sync.WaitGroup
}

// Wait blocks until every batch accepted by SendMails has been recorded, or
// ctx is done.
func (c *MailController) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendMails accepts the multipart send form, resolves its recipients and
// sends one message per recipient before answering.
func (c *MailController) SendMails(w http.ResponseWriter, r *http.Request) {
	c.inflight.Add(1)
	defer c.inflight.Done()

	errs := errorResponder{key: "message", fallback: "Failed to send emails", logger: c.Logger}

	limit := c.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "Upload too large"})
			return
		}
		errs.write(w, r, appErrors.NewValidation("", "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := service.SendMailsInput{
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("body"),
	}

	if raw := r.FormValue("isManual"); raw != "" {
		manual, err := strconv.ParseBool(raw)
		if err != nil {
			errs.write(w, r, appErrors.NewValidation("isManual", "isManual must be true or false"))
			return
		}
		in.Source.Manual = manual
	}

	if in.Source.Manual {
		in.Source.VariablesJSON = r.FormValue("variables")
		in.Source.RecipientsJSON = r.FormValue("recipients")
	} else if files := r.MultipartForm.File["csvFile"]; len(files) > 0 {
		data, err := readUpload(files[0])
		if err != nil {
			errs.write(w, r, appErrors.NewMalformedInput("csv", "unreadable upload", err))
			return
		}
		in.Source.CSV = data
	}

	dir, err := os.MkdirTemp(c.TempDir, "mailmerge-*")
	if err != nil {
		errs.write(w, r, err)
		return
	}
	defer os.RemoveAll(dir)

	uploads, err := spoolAttachments(dir, r.MultipartForm.File["attachments"])
	if err != nil {
		errs.write(w, r, err)
		return
	}
	in.Attachments = uploads

	// The batch runs to completion even if the extension disconnects.
	ctx := context.WithoutCancel(r.Context())
	start := time.Now()
	campaign, err := c.Mail.SendMails(ctx, UserIDFrom(r.Context()), in)
	if err != nil {
		errs.write(w, r, err)
		return
	}

	stats := model.StatsOf(campaign)
	if c.Logger != nil {
		c.Logger.Info("send request finished",
			zap.String("campaign_id", campaign.ID),
			zap.Int("total", stats.Total),
			zap.Int("failed", stats.Failed),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Emails sent!",
		"campaign_id": campaign.ID,
		"total":       stats.Total,
		"succeeded":   stats.Succeeded,
		"failed":      stats.Failed,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// spoolAttachments copies each upload into dir so it can be re-read for
// every message of the batch.
func spoolAttachments(dir string, files []*multipart.FileHeader) ([]*model.UploadedFile, error) {
	uploads := make([]*model.UploadedFile, 0, len(files))
	for i, fh := range files {
		name := filepath.Base(fh.Filename)
		if name == "." || name == string(filepath.Separator) {
			continue
		}
		path := filepath.Join(dir, strconv.Itoa(i)+"-"+name)
		size, err := copyUpload(fh, path)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, &model.UploadedFile{
			Name:        name,
			Path:        path,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        size,
		})
	}
	return uploads, nil
}

func copyUpload(fh *multipart.FileHeader, path string) (int64, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}
