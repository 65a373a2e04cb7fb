package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestSubscribeRejectsForeignDomain(t *testing.T) {
	svc := NewSubscriberService(nil, "@berkeley.edu")

	err := svc.Subscribe(context.Background(), "someone@stanford.edu", "Someone")
	if !errors.Is(err, ErrInvalidSubscriberEmail) {
		t.Fatalf("err = %v, want ErrInvalidSubscriberEmail", err)
	}
}

func TestTranslateSubscribeError_DuplicateKey(t *testing.T) {
	// A concurrent subscribe can win the race between the existence
	// check and the insert; the conflict is a duplicate, not a failure.
	err := translateSubscribeError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey))
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("err = %v, want ErrAlreadySubscribed", err)
	}
}

func TestTranslateSubscribeError_Other(t *testing.T) {
	cause := errors.New("connection refused")
	err := translateSubscribeError(cause)
	if errors.Is(err, ErrAlreadySubscribed) {
		t.Fatal("unrelated failures must not read as duplicates")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}
