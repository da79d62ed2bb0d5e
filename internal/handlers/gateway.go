package handlers

import (
	"context"

	"example.com/layali/planner-gateway/internal/marketplace"
	"example.com/layali/planner-gateway/internal/models"
	"example.com/layali/planner-gateway/internal/session"
)

// Gateway описывает маркетплейс от имени одного пользователя.
type Gateway interface {
	session.Backend
	CreateEvent(ctx context.Context, input marketplace.CreateEventInput) (models.Event, error)
	UpdateEvent(ctx context.Context, eventID string, input marketplace.UpdateEventInput) (models.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// GatewayFactory возвращает маркетплейс, подписывающий запросы токеном пользователя.
type GatewayFactory func(token string) Gateway

// MarketplaceGateway связывает фабрику с HTTP-клиентом маркетплейса.
func MarketplaceGateway(client *marketplace.Client) GatewayFactory {
	return func(token string) Gateway {
		return client.WithToken(token)
	}
}
