package events

import "testing"

func TestPublishDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(TopicTaxonomy, func(e Event) { got = append(got, e) })

	bus.Publish(Event{Topic: TopicTaxonomy, Entity: "category", ID: "c1", Action: ActionCreated})
	bus.Publish(Event{Topic: TopicPatient, Entity: "patient", ID: "p1", Action: ActionCreated})

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].ID != "c1" || got[0].Action != ActionCreated {
		t.Errorf("unexpected event: %+v", got[0])
	}
	if got[0].At.IsZero() {
		t.Error("Publish should stamp At when unset")
	}
}

func TestPublishSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(TopicSelection, func(Event) { order = append(order, 1) })
	bus.Subscribe(TopicSelection, func(Event) { order = append(order, 2) })

	bus.Publish(Event{Topic: TopicSelection})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handlers ran in order %v, want [1 2]", order)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic.
	bus.Publish(Event{Topic: TopicPatient, Action: ActionDeleted})
}
