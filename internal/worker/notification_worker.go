package worker

import (
	"context"

	"github.com/spec-kit/care-access/internal/service"
)

// StartNotificationWorker registers the access event fan-out handlers and
// starts the delivery loop. The loop stops when ctx is done.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	go notificationService.Run(ctx)
}
