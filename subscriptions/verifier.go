// subscriptions/verifier.go - purchase verification against Google Play
package subscriptions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"ingresosgo/config"
)

const androidPublisherScope = "https://www.googleapis.com/auth/androidpublisher"

// MinTokenLength is the shortest purchase token the mock verifier accepts.
const MinTokenLength = 20

// Verification is the outcome of checking one purchase token. Reason is set
// when Valid is false.
type Verification struct {
	Valid        bool      `json:"isValid"`
	Reason       string    `json:"error,omitempty"`
	OrderID      string    `json:"orderId,omitempty"`
	StartTime    time.Time `json:"purchaseTime"`
	ExpiryTime   time.Time `json:"expiryTime"`
	AutoRenewing bool      `json:"autoRenewing"`
}

type Verifier interface {
	VerifySubscription(ctx context.Context, productID, purchaseToken string) (Verification, error)
}

// NewVerifier returns the Google Play verifier when a service account file is
// available, and the mock verifier otherwise or when GOOGLE_PLAY_MOCK is set.
func NewVerifier(ctx context.Context, cfg config.GooglePlay) Verifier {
	if cfg.UseMock {
		log.Println("🧪 Google Play verification: mock mode")
		return NewMockVerifier()
	}
	data, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		log.Printf("⚠️  Service account file not found: %s", cfg.ServiceAccountFile)
		log.Println("⚠️  Using mock verification for development")
		return NewMockVerifier()
	}
	v, err := NewGooglePlayVerifier(ctx, data, cfg.BaseURL, cfg.PackageName)
	if err != nil {
		log.Printf("❌ Error initializing Google Play API: %v", err)
		log.Println("⚠️  Using mock verification for development")
		return NewMockVerifier()
	}
	log.Println("✅ Google Play API initialized")
	return v
}

// GooglePlayVerifier calls the androidpublisher v3 subscription endpoint.
type GooglePlayVerifier struct {
	client      *http.Client
	baseURL     string
	packageName string
	now         func() time.Time
}

// NewGooglePlayVerifier builds an authorized client from service account JSON.
func NewGooglePlayVerifier(ctx context.Context, credentialsJSON []byte, baseURL, packageName string) (*GooglePlayVerifier, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, androidPublisherScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	return NewGooglePlayVerifierWithClient(oauth2.NewClient(ctx, creds.TokenSource), baseURL, packageName), nil
}

func NewGooglePlayVerifierWithClient(client *http.Client, baseURL, packageName string) *GooglePlayVerifier {
	return &GooglePlayVerifier{
		client:      client,
		baseURL:     baseURL,
		packageName: packageName,
		now:         time.Now,
	}
}

type subscriptionPurchase struct {
	OrderID          string `json:"orderId"`
	StartTimeMillis  string `json:"startTimeMillis"`
	ExpiryTimeMillis string `json:"expiryTimeMillis"`
	AutoRenewing     bool   `json:"autoRenewing"`
	PaymentState     *int   `json:"paymentState"`
}

func millis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (g *GooglePlayVerifier) VerifySubscription(ctx context.Context, productID, purchaseToken string) (Verification, error) {
	endpoint := fmt.Sprintf("%s/androidpublisher/v3/applications/%s/purchases/subscriptions/%s/tokens/%s",
		g.baseURL, url.PathEscape(g.packageName), url.PathEscape(productID), url.PathEscape(purchaseToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Verification{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return Verification{}, fmt.Errorf("google play request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Verification{Reason: "Subscription not found"}, nil
	case http.StatusGone:
		return Verification{Reason: "Purchase token is invalid or expired"}, nil
	default:
		return Verification{}, fmt.Errorf("google play returned status %d", resp.StatusCode)
	}

	var p subscriptionPurchase
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Verification{}, fmt.Errorf("decode google play response: %w", err)
	}

	v := Verification{
		OrderID:      p.OrderID,
		StartTime:    millis(p.StartTimeMillis),
		ExpiryTime:   millis(p.ExpiryTimeMillis),
		AutoRenewing: p.AutoRenewing,
	}
	switch {
	case p.PaymentState == nil || *p.PaymentState != 1:
		v.Reason = "Payment not received"
	case v.ExpiryTime.IsZero() || !v.ExpiryTime.After(g.now()):
		v.Reason = "Subscription expired"
	default:
		v.Valid = true
	}
	return v, nil
}

// MockVerifier accepts any well-formed token for thirty days. Development only.
type MockVerifier struct {
	now func() time.Time
}

func NewMockVerifier() *MockVerifier {
	return &MockVerifier{now: time.Now}
}

func (m *MockVerifier) VerifySubscription(_ context.Context, _ string, purchaseToken string) (Verification, error) {
	if len(purchaseToken) < MinTokenLength {
		return Verification{Reason: "Invalid purchase token format"}, nil
	}
	now := m.now().UTC()
	return Verification{
		Valid:        true,
		OrderID:      fmt.Sprintf("mock_order_%d", now.UnixMilli()),
		StartTime:    now,
		ExpiryTime:   now.Add(30 * 24 * time.Hour),
		AutoRenewing: true,
	}, nil
}
