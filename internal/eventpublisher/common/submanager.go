package common

import (
	"sync"

	"restaurant-reviews/internal/eventpublisher/event"
)

type SubManager struct {
	subscribers    map[event.EventWChannel]struct{}
	subscriptionMu sync.RWMutex
}

func NewSubManager() *SubManager {
	return &SubManager{
		subscribers: make(map[event.EventWChannel]struct{}),
	}
}

func (m *SubManager) Subscribe(subscriber event.EventWChannel) {
	m.subscriptionMu.Lock()
	defer m.subscriptionMu.Unlock()

	m.subscribers[subscriber] = struct{}{}
}

// Unsubscribe closes the channel. It reports false if the channel was not subscribed.
func (m *SubManager) Unsubscribe(subscriber event.EventWChannel) bool {
	m.subscriptionMu.Lock()
	defer m.subscriptionMu.Unlock()

	if _, ok := m.subscribers[subscriber]; !ok {
		return false
	}
	delete(m.subscribers, subscriber)
	close(subscriber)
	return true
}

func (m *SubManager) UnsubscribeAll() {
	m.subscriptionMu.Lock()
	defer m.subscriptionMu.Unlock()

	for subscriber := range m.subscribers {
		delete(m.subscribers, subscriber)
		close(subscriber)
	}
}

func (m *SubManager) Len() int {
	m.subscriptionMu.RLock()
	defer m.subscriptionMu.RUnlock()
	return len(m.subscribers)
}

// OnSubscribers calls do for a snapshot of the subscribers, so do may unsubscribe.
func (m *SubManager) OnSubscribers(do func(event.EventWChannel)) {
	m.subscriptionMu.RLock()
	subsCopy := make([]event.EventWChannel, 0, len(m.subscribers))
	for subscriber := range m.subscribers {
		subsCopy = append(subsCopy, subscriber)
	}
	m.subscriptionMu.RUnlock()

	for _, subscriber := range subsCopy {
		do(subscriber)
	}
}
