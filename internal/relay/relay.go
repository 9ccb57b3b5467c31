package relay

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/hub"
	"github.com/emoncse/bugtracker/pkg/log"
	"github.com/emoncse/bugtracker/pkg/pubsub"
)

// Relay is a Broadcaster that delivers locally through the hub and
// mirrors every frame onto the event bus so other instances can deliver
// to their own room members. Frames arriving from the bus are tagged
// with the publishing instance id; the subscriber skips its own.
type Relay struct {
	hub        *hub.Hub
	bus        pubsub.PubSub
	instanceID string
	logger     zerolog.Logger
}

// New creates a relay around the local hub.
func New(h *hub.Hub, bus pubsub.PubSub, instanceID string) *Relay {
	return &Relay{
		hub:        h,
		bus:        bus,
		instanceID: instanceID,
		logger:     log.L().With().Str("component", "relay").Logger(),
	}
}

// Broadcast delivers to local room members and publishes the frame for
// remote instances. Publish failures are logged; local delivery already
// happened and stands.
func (r *Relay) Broadcast(roomKey string, message interface{}, excludeUserID string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	r.hub.BroadcastRaw(roomKey, data, excludeUserID)

	event, err := pubsub.NewEvent(pubsub.EventRoomBroadcast, roomKey, r.instanceID, pubsub.RoomBroadcastPayload{
		ExcludeUserID: excludeUserID,
		Frame:         data,
	})
	if err != nil {
		return err
	}

	if err := r.bus.Publish(context.Background(), pubsub.RoomChannel(roomKey), event); err != nil {
		r.logger.Warn().
			Err(err).
			Str(log.FieldRoomKey, roomKey).
			Msg("relay publish failed")
	}
	return nil
}

// Run subscribes to every room channel and replays remote frames into
// the local hub until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	events, err := r.bus.SubscribePattern(ctx, pubsub.PatternAllRooms)
	if err != nil {
		return err
	}

	r.logger.Info().Str("instance", r.instanceID).Msg("relay subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			r.handle(event)
		}
	}
}

func (r *Relay) handle(event *pubsub.Event) {
	if event.Type != pubsub.EventRoomBroadcast {
		return
	}
	if event.Origin == r.instanceID {
		return
	}

	var payload pubsub.RoomBroadcastPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		r.logger.Warn().Err(err).Msg("malformed relay payload")
		return
	}

	r.hub.BroadcastRaw(event.RoomKey, payload.Frame, payload.ExcludeUserID)
}
