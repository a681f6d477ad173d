package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ClientID:   "test-client-id",
		Secret:     "test-secret",
		BaseURL:    server.URL,
		ClientName: "Minty",
	})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return client, server
}

func TestNewClient_UnknownEnvironment(t *testing.T) {
	_, err := NewClient(Config{ClientID: "id", Secret: "secret", Environment: "staging"})
	if err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestNewClient_EnvironmentCaseInsensitive(t *testing.T) {
	client, err := NewClient(Config{ClientID: "id", Secret: "secret", Environment: "Sandbox"})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	if client.baseURL != "https://sandbox.plaid.com" {
		t.Errorf("baseURL = %s, want sandbox URL", client.baseURL)
	}
}

func TestCreateLinkToken(t *testing.T) {
	var gotRequest linkTokenCreateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/link/token/create" {
			t.Errorf("path = %s, want /link/token/create", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(linkTokenCreateResponse{
			LinkToken: "link-sandbox-abc123",
			RequestID: "req-1",
		})
	})

	token, err := client.CreateLinkToken(context.Background(), "test_user_123")
	if err != nil {
		t.Fatalf("CreateLinkToken() failed: %v", err)
	}
	if token != "link-sandbox-abc123" {
		t.Errorf("token = %s, want link-sandbox-abc123", token)
	}

	if gotRequest.ClientID != "test-client-id" {
		t.Errorf("client_id = %s, want test-client-id", gotRequest.ClientID)
	}
	if gotRequest.User.ClientUserID != "test_user_123" {
		t.Errorf("client_user_id = %s, want test_user_123", gotRequest.User.ClientUserID)
	}
	if len(gotRequest.Products) != 1 || gotRequest.Products[0] != "transactions" {
		t.Errorf("products = %v, want [transactions]", gotRequest.Products)
	}
	if len(gotRequest.CountryCodes) != 1 || gotRequest.CountryCodes[0] != "US" {
		t.Errorf("country_codes = %v, want [US]", gotRequest.CountryCodes)
	}
	if gotRequest.ClientName != "Minty" {
		t.Errorf("client_name = %s, want Minty", gotRequest.ClientName)
	}
}

func TestCreateLinkToken_EmptyUserID(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.CreateLinkToken(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty user ID")
	}
	if called {
		t.Error("request was sent despite missing user ID")
	}
}

func TestCreateLinkToken_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error_type":    "INVALID_REQUEST",
			"error_code":    "INVALID_FIELD",
			"error_message": "client_id is invalid",
			"request_id":    "req-err-1",
		})
	})

	_, err := client.CreateLinkToken(context.Background(), "test_user_123")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.ErrorType != "INVALID_REQUEST" {
		t.Errorf("ErrorType = %s, want INVALID_REQUEST", apiErr.ErrorType)
	}
	if apiErr.ErrorCode != "INVALID_FIELD" {
		t.Errorf("ErrorCode = %s, want INVALID_FIELD", apiErr.ErrorCode)
	}
	if apiErr.RequestID != "req-err-1" {
		t.Errorf("RequestID = %s, want req-err-1", apiErr.RequestID)
	}
}

func TestCreateLinkToken_TransportError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.CreateLinkToken(context.Background(), "test_user_123")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Unwrap() == nil {
		t.Error("transport error should carry its cause")
	}
}

func TestExchangePublicToken(t *testing.T) {
	var gotRequest exchangeRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item/public_token/exchange" {
			t.Errorf("path = %s, want /item/public_token/exchange", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ExchangeResult{
			AccessToken: "access-sandbox-xyz",
			ItemID:      "item-1",
			RequestID:   "req-2",
		})
	})

	result, err := client.ExchangePublicToken(context.Background(), "public-sandbox-token")
	if err != nil {
		t.Fatalf("ExchangePublicToken() failed: %v", err)
	}
	if result.AccessToken != "access-sandbox-xyz" {
		t.Errorf("AccessToken = %s, want access-sandbox-xyz", result.AccessToken)
	}
	if result.ItemID != "item-1" {
		t.Errorf("ItemID = %s, want item-1", result.ItemID)
	}
	if gotRequest.PublicToken != "public-sandbox-token" {
		t.Errorf("public_token = %s, want public-sandbox-token", gotRequest.PublicToken)
	}
}

func TestExchangePublicToken_EmptyToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request was sent despite missing public token")
	})

	if _, err := client.ExchangePublicToken(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty public token")
	}
}

func TestGetTransactions_SinglePage(t *testing.T) {
	var gotRequest transactionsGetRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/get" {
			t.Errorf("path = %s, want /transactions/get", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(transactionsGetResponse{
			Transactions: []Transaction{
				{TransactionID: "t1", DateString: "2024-01-05", Name: "Coffee"},
				{TransactionID: "t2", DateString: "2024-01-06", Name: "Groceries"},
			},
			TotalTransactions: 2,
		})
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := client.GetTransactions(context.Background(), "access-token", start, end)
	if err != nil {
		t.Fatalf("GetTransactions() failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if gotRequest.StartDate != "2024-01-01" {
		t.Errorf("start_date = %s, want 2024-01-01", gotRequest.StartDate)
	}
	if gotRequest.EndDate != "2024-01-31" {
		t.Errorf("end_date = %s, want 2024-01-31", gotRequest.EndDate)
	}
	if gotRequest.AccessToken != "access-token" {
		t.Errorf("access_token = %s, want access-token", gotRequest.AccessToken)
	}
	if gotRequest.Options.Count != pageSize {
		t.Errorf("options.count = %d, want %d", gotRequest.Options.Count, pageSize)
	}
}

func TestGetTransactions_Pagination(t *testing.T) {
	pages := [][]Transaction{
		{
			{TransactionID: "t1", DateString: "2024-01-05", Name: "Coffee"},
			{TransactionID: "t2", DateString: "2024-01-06", Name: "Groceries"},
		},
		{
			{TransactionID: "t3", DateString: "2024-01-07", Name: "Gas"},
		},
	}
	var offsets []int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req transactionsGetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		offsets = append(offsets, req.Options.Offset)

		page := len(offsets) - 1
		if page >= len(pages) {
			t.Fatalf("unexpected extra page request at offset %d", req.Options.Offset)
		}
		json.NewEncoder(w).Encode(transactionsGetResponse{
			Transactions:      pages[page],
			TotalTransactions: 3,
		})
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := client.GetTransactions(context.Background(), "access-token", start, end)
	if err != nil {
		t.Fatalf("GetTransactions() failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d transactions, want 3", len(got))
	}
	if got[2].TransactionID != "t3" {
		t.Errorf("last transaction = %s, want t3", got[2].TransactionID)
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 2 {
		t.Errorf("offsets = %v, want [0 2]", offsets)
	}
}

func TestGetTransactions_EmptyResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transactionsGetResponse{TotalTransactions: 0})
	})

	got, err := client.GetTransactions(context.Background(), "access-token", time.Now().AddDate(0, 0, -30), time.Now())
	if err != nil {
		t.Fatalf("GetTransactions() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d transactions, want 0", len(got))
	}
}

func TestTransaction_GetDate(t *testing.T) {
	tests := []struct {
		name       string
		dateString string
		want       string
		wantNil    bool
		wantErr    bool
	}{
		{name: "Valid Date", dateString: "2024-01-05", want: "2024-01-05"},
		{name: "Empty Date", dateString: "", wantNil: true},
		{name: "Malformed Date", dateString: "01/05/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{DateString: tt.dateString}
			got, err := tx.GetDate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetDate() failed: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("got %v, want nil", got)
				}
				return
			}
			if got == nil || got.Format("2006-01-02") != tt.want {
				t.Errorf("got %v, want %s", got, tt.want)
			}
		})
	}
}
