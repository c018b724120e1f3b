package notification

import (
	"context"
	"fmt"

	"vendora/utils"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultNotificationService pushes through Firebase Cloud Messaging.
type DefaultNotificationService struct {
	client *messaging.Client
	tokens DeviceTokenSource
}

// NewDefaultNotificationService initializes the FCM client from a service
// account credentials file.
func NewDefaultNotificationService(ctx context.Context, credentialsFile string, tokens DeviceTokenSource) (*DefaultNotificationService, error) {
	var app *firebase.App
	var err error
	if credentialsFile != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}
	return &DefaultNotificationService{client: client, tokens: tokens}, nil
}

func (s *DefaultNotificationService) NotifyCustomer(ctx context.Context, customerID, title, body string, data map[string]string) error {
	return s.push(ctx, customerID, title, body, data)
}

func (s *DefaultNotificationService) NotifyProvider(ctx context.Context, providerID, title, body string, data map[string]string) error {
	return s.push(ctx, providerID, title, body, data)
}

func (s *DefaultNotificationService) NotifyShop(ctx context.Context, shopOwnerID, title, body string, data map[string]string) error {
	return s.push(ctx, shopOwnerID, title, body, data)
}

func (s *DefaultNotificationService) push(ctx context.Context, accountID, title, body string, data map[string]string) error {
	logger := utils.GetLogger()

	tokens, err := s.tokens.TokensFor(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to resolve device tokens for %s: %w", accountID, err)
	}
	if len(tokens) == 0 {
		logger.Debug("No device tokens registered, skipping push", zap.String("accountID", accountID))
		return nil
	}

	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
		if _, err := s.client.Send(ctx, msg); err != nil {
			logger.Warn("FCM send failed",
				zap.String("accountID", accountID),
				zap.Error(err))
		}
	}
	return nil
}
