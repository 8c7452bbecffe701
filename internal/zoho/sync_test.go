package zoho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pj_commission_backend/internal/zoho/repository"
	"pj_commission_backend/platform/logger"
)

// fakeZoho is an httptest-backed stand-in for the CRM API and its OAuth
// accounts server.
type fakeZoho struct {
	mux          *http.ServeMux
	server       *httptest.Server
	tokenStatus  int
	searchHits   map[string]string // criteria value -> contact JSON array
	dealsByID    map[string]string // contact id -> deal JSON array
	searchCalls  atomic.Int64
	dealCalls    atomic.Int64
	updateCalls  atomic.Int64
	updatedDeals []string
	updatedStage string
}

func newFakeZoho() *fakeZoho {
	f := &fakeZoho{
		mux:         http.NewServeMux(),
		tokenStatus: http.StatusOK,
		searchHits:  map[string]string{},
		dealsByID:   map[string]string{},
	}

	f.mux.HandleFunc("/oauth/v2/token", func(w http.ResponseWriter, r *http.Request) {
		if f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","expires_in":3600}`))
	})

	f.mux.HandleFunc("/crm/v2/Contacts/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		criteria := r.URL.Query().Get("criteria")
		for name, contacts := range f.searchHits {
			if criteria == "(Full_Name:equals:"+name+")" {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":` + contacts + `}`))
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})

	f.mux.HandleFunc("/crm/v2/Contacts/", func(w http.ResponseWriter, r *http.Request) {
		f.dealCalls.Add(1)
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		contactID := parts[len(parts)-2]
		deals, ok := f.dealsByID[contactID]
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + deals + `}`))
	})

	f.mux.HandleFunc("/crm/v2/Deals/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.updateCalls.Add(1)
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		f.updatedDeals = append(f.updatedDeals, parts[len(parts)-1])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS"}]}`))
	})

	f.server = httptest.NewServer(f.mux)
	return f
}

func (f *fakeZoho) close() {
	f.server.Close()
}

func newTestSynchronizer(f *fakeZoho, store TokenStore) *Synchronizer {
	client := NewClient(f.server.URL, f.server.URL, "client-id", "client-secret")
	tokens := NewTokenCache(store, client)
	return NewSynchronizer(tokens, NewResolver(client), NewMatcher(client), client, logger.New("development"))
}

func connectedStore() *fakeTokenStore {
	return &fakeTokenStore{
		token: repository.OAuthToken{
			RefreshToken: "refresh",
			AccessToken:  "valid",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
		found: true,
	}
}

func TestSyncClaim_EndToEnd(t *testing.T) {
	f := newFakeZoho()
	defer f.close()

	f.searchHits["Li Wei"] = `[{"id":"C1","Full_Name":"Li Wei"}]`
	f.dealsByID["C1"] = `[
		{"id":"D1","Deal_Name":"Li Wei - AIT","Stage":"Negotiation","Account_Name":{"name":"Auckland Institute of Technology"},"Course_Start_Date":"2024-03-04"},
		{"id":"D2","Deal_Name":"Li Wei - AI","Stage":"Proposal","Account_Name":{"name":"Auckland Institute"},"Created_Time":"2024-01-01"}
	]`

	sync := newTestSynchronizer(f, connectedStore())
	result := sync.SyncClaim(context.Background(), "Li Wei", "Auckland Institute", "2024-03-01")

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.DealID != "D1" {
		t.Fatalf("expected the 3-day candidate D1, got %q", result.DealID)
	}
	if result.PreviousStage != "Negotiation" {
		t.Fatalf("expected previous stage Negotiation, got %q", result.PreviousStage)
	}
	if f.updateCalls.Load() != 1 || len(f.updatedDeals) != 1 || f.updatedDeals[0] != "D1" {
		t.Fatalf("expected exactly one stage update for D1, got %v", f.updatedDeals)
	}
}

func TestSyncClaim_NoContact_NoSideEffects(t *testing.T) {
	f := newFakeZoho()
	defer f.close()

	sync := newTestSynchronizer(f, connectedStore())
	result := sync.SyncClaim(context.Background(), "Nobody Here", "Auckland Institute", "")

	if result.Success {
		t.Fatal("expected failure when no contact resolves")
	}
	if !strings.Contains(result.Error, "No contact found") {
		t.Fatalf("expected a no-contact diagnostic, got %q", result.Error)
	}
	if !strings.Contains(result.Error, "Nobody Here") {
		t.Fatalf("expected the tried variants in the diagnostic, got %q", result.Error)
	}
	if f.dealCalls.Load() != 0 {
		t.Fatal("deals endpoint must not be called without a contact")
	}
	if f.updateCalls.Load() != 0 {
		t.Fatal("no remote mutation may happen without a contact")
	}
}

func TestSyncClaim_NoMatchingDeal(t *testing.T) {
	f := newFakeZoho()
	defer f.close()

	f.searchHits["Li Wei"] = `[{"id":"C1","Full_Name":"Li Wei"}]`
	f.dealsByID["C1"] = `[{"id":"D9","Deal_Name":"Unrelated","Stage":"Won","Account_Name":{"name":"Somewhere Else"}}]`

	sync := newTestSynchronizer(f, connectedStore())
	result := sync.SyncClaim(context.Background(), "Li Wei", "Auckland Institute", "2024-03-01")

	if result.Success {
		t.Fatal("expected failure when no deal matches the school")
	}
	if !strings.Contains(result.Error, "No matching deal") {
		t.Fatalf("expected a no-deal diagnostic, got %q", result.Error)
	}
	if f.updateCalls.Load() != 0 {
		t.Fatal("no remote mutation may happen without a matched deal")
	}
}

func TestSyncClaim_RefreshFailure_StopsPipeline(t *testing.T) {
	f := newFakeZoho()
	defer f.close()
	f.tokenStatus = http.StatusBadRequest

	store := &fakeTokenStore{
		token: repository.OAuthToken{
			RefreshToken: "refresh",
			AccessToken:  "expired",
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
		found: true,
	}

	sync := newTestSynchronizer(f, store)
	result := sync.SyncClaim(context.Background(), "Li Wei", "Auckland Institute", "")

	if result.Success {
		t.Fatal("expected failure when the token refresh is rejected")
	}
	if !strings.Contains(result.Error, "access token") {
		t.Fatalf("expected an access-token diagnostic, got %q", result.Error)
	}
	if f.searchCalls.Load() != 0 || f.dealCalls.Load() != 0 || f.updateCalls.Load() != 0 {
		t.Fatal("no CRM call may follow a failed refresh")
	}
}

func TestSyncClaim_NotConnected(t *testing.T) {
	f := newFakeZoho()
	defer f.close()

	sync := newTestSynchronizer(f, &fakeTokenStore{found: false})
	result := sync.SyncClaim(context.Background(), "Li Wei", "Auckland Institute", "")

	if result.Success {
		t.Fatal("expected failure without a stored connection")
	}
	if !strings.Contains(result.Error, "access token") {
		t.Fatalf("expected an access-token diagnostic, got %q", result.Error)
	}
}

func TestSyncClaim_UpdateFailure(t *testing.T) {
	f := newFakeZoho()
	defer f.close()

	f.searchHits["Li Wei"] = `[{"id":"C1","Full_Name":"Li Wei"}]`
	f.dealsByID["C1"] = `[{"id":"D1","Deal_Name":"Li Wei - AIT","Stage":"Negotiation","Account_Name":{"name":"Auckland Institute"}}]`
	f.mux.HandleFunc("/crm/v2/Deals/D1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	sync := newTestSynchronizer(f, connectedStore())
	result := sync.SyncClaim(context.Background(), "Li Wei", "Auckland Institute", "")

	if result.Success {
		t.Fatal("expected failure when the stage update is rejected")
	}
	if !strings.Contains(result.Error, "Update failed") {
		t.Fatalf("expected an update-failed diagnostic, got %q", result.Error)
	}
}
