package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

func TestSendMailsFromCSV(t *testing.T) {
	tr := &MockTransport{}
	repo := &MockCampaignRepo{}
	svc := &MailService{
		UserRepo: NewMockUserRepo(testSender()),
		Dispatcher: &Dispatcher{
			Transport: tr, CampaignRepo: repo, Logger: zap.NewNop(), Concurrency: 2,
		},
	}

	upload := filepath.Join(t.TempDir(), "up")
	require.NoError(t, os.WriteFile(upload, []byte("x"), 0o600))

	campaign, err := svc.SendMails(context.Background(), "user-1", SendMailsInput{
		Subject: "Hi {{firstName}}",
		Body:    "<p>{{company}}</p>",
		Source:  RecipientSource{CSV: []byte("email,firstName,company\na@x.com,Ann,Acme\nb@x.com,Bob,Beta\n")},
		Attachments: []*model.UploadedFile{
			{Name: "a.txt", Path: upload, ContentType: "text/plain"},
			{Name: "", Path: upload},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"firstName", "company"}, campaign.VariableNames)
	require.Len(t, campaign.Recipients, 2)
	assert.Equal(t, "a@x.com", campaign.Recipients[0].Email)
	assert.True(t, campaign.Recipients[1].SendSucceeded)
	assert.Equal(t, []model.AttachmentMetadata{{Filename: "a.txt", ContentType: "text/plain"}}, campaign.Attachments)

	for _, e := range tr.Sent() {
		require.Len(t, e.Attachments, 1)
	}
}

func TestSendMailsMalformedCSVSendsNothing(t *testing.T) {
	tr := &MockTransport{}
	repo := &MockCampaignRepo{}
	svc := &MailService{
		UserRepo:   NewMockUserRepo(testSender()),
		Dispatcher: &Dispatcher{Transport: tr, CampaignRepo: repo},
	}

	_, err := svc.SendMails(context.Background(), "user-1", SendMailsInput{
		Subject: "S", Body: "B", Source: RecipientSource{CSV: []byte{}},
	})
	require.Error(t, err)
	var me *appErrors.MalformedInputError
	assert.ErrorAs(t, err, &me)
	assert.Empty(t, tr.Sent())
	assert.Empty(t, repo.campaigns)
}

func TestSendMailsManual(t *testing.T) {
	tr := &MockTransport{}
	svc := &MailService{
		UserRepo:   NewMockUserRepo(testSender()),
		Dispatcher: &Dispatcher{Transport: tr, CampaignRepo: &MockCampaignRepo{}},
	}

	campaign, err := svc.SendMails(context.Background(), "user-1", SendMailsInput{
		Subject: "Hi {{name}}",
		Body:    "B",
		Source: RecipientSource{
			Manual:         true,
			VariablesJSON:  `["name"]`,
			RecipientsJSON: `[{"email":"a@x.com","variableValues":["Ann"]}]`,
		},
	})
	require.NoError(t, err)
	require.Len(t, tr.Sent(), 1)
	assert.Equal(t, "Hi Ann", tr.Sent()[0].Subject)
	assert.Len(t, campaign.Recipients, 1)
}

func TestSendMailsUnknownUser(t *testing.T) {
	svc := &MailService{UserRepo: NewMockUserRepo(), Dispatcher: &Dispatcher{}}
	_, err := svc.SendMails(context.Background(), "ghost", SendMailsInput{Subject: "S", Body: "B"})
	assert.True(t, appErrors.IsNotFound(err))
}
