package notification

import "context"

// NotificationService is the fire-and-forget side channel invoked by state
// transitions and checkout. Delivery mechanics are not the core's concern;
// the booking and order services only pick the recipient and the message.
type NotificationService interface {
	NotifyCustomer(ctx context.Context, customerID, title, body string, data map[string]string) error
	NotifyProvider(ctx context.Context, providerID, title, body string, data map[string]string) error
	NotifyShop(ctx context.Context, shopOwnerID, title, body string, data map[string]string) error
}

// DeviceTokenSource resolves an account id to its registered push tokens.
// Device registration is owned by the profile services.
type DeviceTokenSource interface {
	TokensFor(ctx context.Context, accountID string) ([]string, error)
}
