package queue

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// CampaignEventsTopic carries a model.CampaignEvent per persisted campaign.
const CampaignEventsTopic = "campaign_events"

// DecodeCampaignEvent accepts the in-memory and the JSON wire forms.
func DecodeCampaignEvent(payload any) (*model.CampaignEvent, error) {
	switch p := payload.(type) {
	case model.CampaignEvent:
		return &p, nil
	case *model.CampaignEvent:
		if p == nil {
			return nil, fmt.Errorf("nil campaign event")
		}
		return p, nil
	case []byte:
		var event model.CampaignEvent
		if err := json.Unmarshal(p, &event); err != nil {
			return nil, fmt.Errorf("invalid campaign event: %w", err)
		}
		return &event, nil
	default:
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}
}

// StartCampaignEventSubscriber logs a delivery report for every dispatched
// campaign.
func StartCampaignEventSubscriber(q Queue, logger *zap.Logger) error {
	err := q.Subscribe(CampaignEventsTopic, func(payload any) error {
		event, err := DecodeCampaignEvent(payload)
		if err != nil {
			// Undecodable payloads never succeed on retry.
			logger.Warn("dropping campaign event", zap.Error(err))
			return nil
		}

		logger.Info("campaign delivery report",
			zap.String("campaign_id", event.CampaignID),
			zap.String("owner_id", event.OwnerID),
			zap.Int("total", event.Total),
			zap.Int("succeeded", event.Succeeded),
			zap.Int("failed", event.Failed),
			zap.Time("dispatched_at", event.DispatchedAt),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", CampaignEventsTopic, err)
	}
	return nil
}
