package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestInvalidatorPublishReachesEveryGroup(t *testing.T) {
	inv := NewInvalidator()

	var seen []string
	for _, group := range []string{GroupTransactions, GroupQuotaStatus, GroupReservations} {
		group := group
		inv.Register(group, func(ctx context.Context, ev MutationEvent) error {
			seen = append(seen, group)
			return nil
		})
	}

	if err := inv.Publish(context.Background(), MutationEvent{ReservationID: "res-1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("hooks fired = %v; want all three groups", seen)
	}
}

func TestInvalidatorHookFailureDoesNotStopOthers(t *testing.T) {
	inv := NewInvalidator()

	failErr := errors.New("redis down")
	inv.Register("broken", func(ctx context.Context, ev MutationEvent) error {
		return failErr
	})

	called := false
	inv.Register("healthy", func(ctx context.Context, ev MutationEvent) error {
		called = true
		return nil
	})

	err := inv.Publish(context.Background(), MutationEvent{})
	if !errors.Is(err, failErr) {
		t.Errorf("Publish() error = %v; want wrapped %v", err, failErr)
	}
	if !called {
		t.Error("healthy hook was skipped after a failure")
	}
}

func TestInvalidatorGroups(t *testing.T) {
	inv := NewInvalidator()
	inv.Register("b", func(ctx context.Context, ev MutationEvent) error { return nil })
	inv.Register("a", func(ctx context.Context, ev MutationEvent) error { return nil })

	if got := inv.Groups(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Groups() = %v; want [a b]", got)
	}
}
