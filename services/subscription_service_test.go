package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/subscriptions"
)

type fakeVerifier struct {
	v   subscriptions.Verification
	err error
}

func (f fakeVerifier) VerifySubscription(context.Context, string, string) (subscriptions.Verification, error) {
	return f.v, f.err
}

func TestVerifyActivatesAndReplaces(t *testing.T) {
	d, clock := newTestDeps(t)
	u := register(t, d, "ana")
	s := NewSubscriptionService(d, fakeVerifier{v: subscriptions.Verification{Valid: true, OrderID: "GPA.1"}})
	ctx := context.Background()

	first, err := s.Verify(ctx, VerifyInput{UserID: u.ID, PurchaseToken: "token-1", ProductID: subscriptions.ProductMonthly})
	if err != nil {
		t.Fatal(err)
	}
	if first.Platform != "android" || !first.ExpirationDate.After(clock.Now()) {
		t.Fatalf("subscription %+v", first)
	}
	if _, err := s.Verify(ctx, VerifyInput{UserID: u.ID, PurchaseToken: "token-2", ProductID: subscriptions.ProductYearly}); err != nil {
		t.Fatal(err)
	}

	st, err := s.UserStatus(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsPremium || st.Subscription == nil || st.Subscription.ProductID != subscriptions.ProductYearly {
		t.Fatalf("status %+v", st)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ActiveSubscriptions != 1 || stats.TotalSubscriptions != 2 {
		t.Fatalf("stats %+v", stats)
	}
}

func TestVerifyRejections(t *testing.T) {
	d, _ := newTestDeps(t)
	u := register(t, d, "ana")
	ctx := context.Background()

	_, err := NewSubscriptionService(d, fakeVerifier{}).Verify(ctx, VerifyInput{UserID: u.ID})
	wantKind(t, err, apperr.KindValidation)

	rejected := fakeVerifier{v: subscriptions.Verification{Reason: "Subscription expired"}}
	_, err = NewSubscriptionService(d, rejected).Verify(ctx, VerifyInput{UserID: u.ID, PurchaseToken: "tok", ProductID: subscriptions.ProductMonthly})
	wantKind(t, err, apperr.KindValidation)
	var invalid *InvalidPurchaseError
	if !errors.As(err, &invalid) || invalid.Details != "Subscription expired" {
		t.Fatalf("got %v", err)
	}

	broken := fakeVerifier{err: errors.New("timeout")}
	_, err = NewSubscriptionService(d, broken).Verify(ctx, VerifyInput{UserID: u.ID, PurchaseToken: "tok", ProductID: subscriptions.ProductMonthly})
	wantKind(t, err, apperr.KindInternal)
}

func TestCancelDropsPremium(t *testing.T) {
	d, _ := newTestDeps(t)
	u := register(t, d, "ana")
	s := NewSubscriptionService(d, fakeVerifier{v: subscriptions.Verification{Valid: true}})
	ctx := context.Background()

	if _, err := s.Verify(ctx, VerifyInput{UserID: u.ID, PurchaseToken: "tok", ProductID: subscriptions.ProductMonthly}); err != nil {
		t.Fatal(err)
	}
	if err := s.Cancel(ctx, u.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, _ := NewUserService(d).Get(ctx, u.ID)
	if got.IsPremium {
		t.Fatal("user still premium after cancel")
	}
	wantKind(t, s.Cancel(ctx, "", ""), apperr.KindValidation)
}

func TestCleanupExpiresDueSubscriptions(t *testing.T) {
	d, clock := newTestDeps(t)
	u := register(t, d, "ana")
	s := NewSubscriptionService(d, fakeVerifier{v: subscriptions.Verification{Valid: true}})
	ctx := context.Background()

	if _, err := s.Verify(ctx, VerifyInput{UserID: u.ID, PurchaseToken: "tok", ProductID: subscriptions.ProductMonthly}); err != nil {
		t.Fatal(err)
	}

	InitCleanupService(s, time.Hour)
	n, err := GetCleanupService().RunOnce(ctx)
	if err != nil || n != 0 {
		t.Fatalf("early sweep got %d, %v", n, err)
	}

	clock.Advance(40 * 24 * time.Hour)
	n, err = GetCleanupService().RunOnce(ctx)
	if err != nil || n != 1 {
		t.Fatalf("sweep got %d, %v", n, err)
	}
	st, err := s.UserStatus(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.IsPremium || st.Subscription != nil {
		t.Fatalf("status after expiry %+v", st)
	}
}

func TestCleanupStartStop(t *testing.T) {
	d, _ := newTestDeps(t)
	InitCleanupService(NewSubscriptionService(d, fakeVerifier{}), time.Hour)
	svc := GetCleanupService()
	svc.Start()
	svc.Start()
	svc.Stop()
	svc.Stop()
}
