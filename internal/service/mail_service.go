package service

import (
	"context"
	"fmt"

	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

// CampaignDispatcher sends a resolved batch and persists its outcomes.
type CampaignDispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*model.Campaign, error)
}

// SendMailsInput is a send request as received from the extension.
type SendMailsInput struct {
	Subject     string
	Body        string
	Source      RecipientSource
	Attachments any
}

// MailService resolves a send request for the signed-in user and hands it to
// the dispatcher.
type MailService struct {
	UserRepo   repository.UserRepositoryInterface
	Dispatcher CampaignDispatcher
}

func (s *MailService) SendMails(ctx context.Context, userID string, in SendMailsInput) (*model.Campaign, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}

	variables, recipients, err := ResolveRecipients(in.Source)
	if err != nil {
		return nil, err
	}

	return s.Dispatcher.Dispatch(ctx, DispatchRequest{
		Sender:        user,
		Subject:       in.Subject,
		Body:          in.Body,
		VariableNames: variables,
		Recipients:    recipients,
		Attachments:   NormalizeAttachments(in.Attachments),
	})
}
