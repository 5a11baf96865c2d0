package websocket

import "roomlink-be/internal/model"

// NotificationPusher adapts the hub to the notification service's delivery
// contract.
type NotificationPusher struct {
	hub *Hub
}

func NewNotificationPusher(hub *Hub) *NotificationPusher {
	return &NotificationPusher{hub: hub}
}

func (p *NotificationPusher) Push(username string, notification model.Notification) {
	p.hub.PushToUsername(username, &Envelope{
		Type:         EventNotification,
		Notification: notification,
	})
}
