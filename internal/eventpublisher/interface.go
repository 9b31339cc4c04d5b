package eventpublisher

import (
	"restaurant-reviews/internal/eventpublisher/event"
)

// Publisher fans events out to subscribed channels. A subscriber that keeps
// missing deliveries is unsubscribed, which closes its channel.
type Publisher interface {
	Subscribe(event.EventWChannel)
	Unsubscribe(event.EventWChannel)
}
