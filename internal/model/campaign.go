// internal/model/campaign.go
package model

import "time"

// Campaign is one subject/body template plus its resolved recipients and
// their send outcomes. It is written once, after the whole batch settled.
type Campaign struct {
	ID            string               `db:"id" bson:"_id" json:"id"`
	OwnerID       string               `db:"owner_id" bson:"owner_id" json:"owner_id"`
	FromAddress   string               `db:"from_address" bson:"from" json:"from"`
	Subject       string               `db:"subject" bson:"subject" json:"subject"`
	Body          string               `db:"body" bson:"body" json:"body"`
	VariableNames []string             `db:"variable_names" bson:"variables" json:"variables"`
	Recipients    []Recipient          `db:"-" bson:"recipients" json:"recipients"`
	Attachments   []AttachmentMetadata `db:"attachments" bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt     time.Time            `db:"created_at" bson:"created_at" json:"created_at"`
}

// Recipient is a single addressee of a campaign. VariableValues is aligned
// by position with Campaign.VariableNames.
type Recipient struct {
	Email          string   `db:"email" bson:"email" json:"email"`
	VariableValues []string `db:"variable_values" bson:"variable_values" json:"variableValues"`
	SendSucceeded  bool     `db:"send_succeeded" bson:"mail_successful" json:"mailSuccessful"`
	ErrorDetail    string   `db:"error_detail" bson:"error_message" json:"errorMessage"`
}

// CampaignStats summarises the outcomes of a campaign's recipients.
type CampaignStats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// StatsOf counts the outcomes recorded on c.
func StatsOf(c *Campaign) CampaignStats {
	stats := CampaignStats{Total: len(c.Recipients)}
	for _, r := range c.Recipients {
		if r.SendSucceeded {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// CampaignEvent is published once a campaign has been persisted.
type CampaignEvent struct {
	CampaignID   string    `json:"campaign_id"`
	OwnerID      string    `json:"owner_id"`
	Total        int       `json:"total"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	DispatchedAt time.Time `json:"dispatched_at"`
}
