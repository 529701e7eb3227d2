package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscribersRetainsBuffer(t *testing.T) {
	hub := NewHub()

	hub.Publish(TopicBookings, Event{Type: EventNewBooking, Payload: map[string]any{"uid": "abc"}})

	sub, replay, err := hub.Subscribe(TopicBookings)
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, replay, 1)
	assert.Equal(t, EventNewBooking, replay[0].Type)
	assert.Equal(t, "abc", replay[0].Payload["uid"])
	assert.False(t, replay[0].PublishedAt.IsZero())
}

func TestSubscribeReceivesLiveEvents(t *testing.T) {
	hub := NewHub()

	sub, replay, err := hub.Subscribe(TopicMetrics)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, replay)

	hub.Publish(TopicMetrics, Event{Type: EventMetricsUpdate})

	got := <-sub.Events()
	assert.Equal(t, EventMetricsUpdate, got.Type)
}

func TestBufferBounded(t *testing.T) {
	hub := NewHub()
	for i := 0; i < DefaultBufferSize*2; i++ {
		hub.Publish(TopicBookings, Event{Type: EventNewBooking})
	}

	sub, replay, err := hub.Subscribe(TopicBookings)
	require.NoError(t, err)
	defer sub.Close()

	assert.Len(t, replay, DefaultBufferSize)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(TopicBookings)
	require.NoError(t, err)
	defer sub.Close()

	// Overflow the subscriber channel; publish must not block.
	for i := 0; i < DefaultSubscriberBuffer*3; i++ {
		hub.Publish(TopicBookings, Event{Type: EventNewBooking})
	}
}

func TestPublishRacingSubscriberCloseDoesNotPanic(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			hub.Publish(TopicBookings, Event{Type: EventNewBooking})
		}
	}()

	for i := 0; i < 500; i++ {
		sub, _, err := hub.Subscribe(TopicBookings)
		require.NoError(t, err)
		sub.Close()
	}
	<-done
}

func TestSubscribeInvalidTopic(t *testing.T) {
	hub := NewHub()
	_, _, err := hub.Subscribe("  ")
	assert.Error(t, err)
}
