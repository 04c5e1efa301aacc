package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/logging"
	"github.com/unclebandit/mailmerge-backend/internal/mailer"
	"github.com/unclebandit/mailmerge-backend/internal/metrics"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/queue"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

const (
	defaultSendConcurrency = 10
	defaultSendTimeout     = 30 * time.Second
)

// DispatchRequest is one send batch: a subject/body template, the resolved
// recipients and the attachments shared by every message.
type DispatchRequest struct {
	Sender        *model.User
	Subject       string
	Body          string
	VariableNames []string
	Recipients    []model.Recipient
	Attachments   []model.Attachment
}

// Dispatcher renders and sends one message per recipient, then persists the
// outcomes as a single campaign.
type Dispatcher struct {
	Transport    mailer.Transport
	CampaignRepo repository.CampaignRepositoryInterface
	Queue        queue.Queue
	Metrics      *metrics.Recorder
	Logger       *zap.Logger

	// Concurrency bounds the number of in-flight sends.
	Concurrency int
	// Limiter paces sends across the batch; nil means unpaced.
	Limiter *rate.Limiter
	// SendTimeout is the deadline of each individual send.
	SendTimeout time.Duration
}

func (d *Dispatcher) validate(req *DispatchRequest) error {
	if req.Sender == nil {
		return appErrors.NewValidation("user", "sender is required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return appErrors.NewValidation("subject", "subject is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return appErrors.NewValidation("body", "body is required")
	}
	if len(req.Recipients) == 0 {
		return appErrors.NewValidation("recipients", "at least one recipient is required")
	}
	if req.Sender.GoogleRefreshToken == "" {
		return appErrors.NewValidation("user", "Google account is not connected; sign in again")
	}
	for _, a := range req.Attachments {
		if _, err := os.Stat(a.SourcePath); err != nil {
			return fmt.Errorf("attachment %q is not readable: %w", a.Filename, err)
		}
	}
	return nil
}

// Dispatch sends the batch and returns the persisted campaign. Individual
// send failures are recorded on their recipient and never fail the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*model.Campaign, error) {
	if err := d.validate(&req); err != nil {
		return nil, err
	}

	concurrency := d.Concurrency
	if concurrency < 1 {
		concurrency = defaultSendConcurrency
	}

	results := make([]model.Recipient, len(req.Recipients))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, rec := range req.Recipients {
		g.Go(func() error {
			results[i] = d.sendOne(ctx, &req, rec)
			return nil
		})
	}
	_ = g.Wait()

	campaign := &model.Campaign{
		ID:            uuid.NewString(),
		OwnerID:       req.Sender.ID,
		FromAddress:   req.Sender.Email,
		Subject:       req.Subject,
		Body:          req.Body,
		VariableNames: req.VariableNames,
		Recipients:    results,
		Attachments:   AttachmentMetadataOf(req.Attachments),
		CreatedAt:     time.Now().UTC(),
	}

	if err := d.CampaignRepo.Create(ctx, campaign); err != nil {
		d.logger().Error("campaign sent but not recorded",
			zap.String("campaign_id", campaign.ID),
			zap.Int("recipients", len(results)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to persist campaign: %w", err)
	}

	stats := model.StatsOf(campaign)
	if d.Metrics != nil {
		d.Metrics.ObserveCampaign(stats.Total)
	}
	d.logger().Info("campaign dispatched",
		zap.String("campaign_id", campaign.ID),
		zap.String("owner_id", campaign.OwnerID),
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
	)

	d.publish(campaign, stats)
	return campaign, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, req *DispatchRequest, rec model.Recipient) model.Recipient {
	out := model.Recipient{Email: rec.Email, VariableValues: rec.VariableValues}

	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			out.ErrorDetail = err.Error()
			return out
		}
	}

	bindings := MapVariables(req.VariableNames, rec.VariableValues)
	email := &mailer.Email{
		To:           rec.Email,
		From:         req.Sender.Email,
		Subject:      RenderTemplate(req.Subject, bindings),
		HTMLBody:     RenderTemplate(req.Body, bindings),
		RefreshToken: req.Sender.GoogleRefreshToken,
		Attachments:  req.Attachments,
	}

	timeout := d.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := d.Transport.Send(sendCtx, email)
	if d.Metrics != nil {
		d.Metrics.ObserveSend(err == nil, time.Since(start))
	}

	if err != nil {
		out.ErrorDetail = err.Error()
		d.logger().Warn("send failed", logging.Recipient(rec.Email), zap.Error(err))
		return out
	}
	out.SendSucceeded = true
	return out
}

func (d *Dispatcher) publish(c *model.Campaign, stats model.CampaignStats) {
	if d.Queue == nil {
		return
	}
	event := model.CampaignEvent{
		CampaignID:   c.ID,
		OwnerID:      c.OwnerID,
		Total:        stats.Total,
		Succeeded:    stats.Succeeded,
		Failed:       stats.Failed,
		DispatchedAt: c.CreatedAt,
	}
	if err := d.Queue.Publish(queue.CampaignEventsTopic, event); err != nil {
		d.logger().Warn("failed to publish campaign event", zap.String("campaign_id", c.ID), zap.Error(err))
	}
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
