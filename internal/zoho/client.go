// Package zoho implements the commission-claim reconciliation core against
// the Zoho CRM API: token caching, contact resolution, deal matching, and the
// single stage mutation performed per claim.
package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// dealFields is the bounded field set requested from the deals-by-contact
// endpoint. It covers the name/stage/account triple plus every date field the
// matcher may tie-break on.
const dealFields = "Deal_Name,Stage,Account_Name,Course_Start_Date,Start_Date,Enrollment_Date,Closing_Date,Created_Time"

// Contact is a CRM contact record.
type Contact struct {
	ID       string
	FullName string
}

// Deal is a CRM deal record. Fields holds every string-valued attribute the
// API returned so the matcher can fall back to scanning for date-looking
// values when none of the preferred date fields parse.
type Deal struct {
	ID          string
	Name        string
	Stage       string
	AccountName string
	Fields      map[string]string
}

// TokenGrant is the outcome of a refresh-token exchange.
type TokenGrant struct {
	AccessToken string
	ExpiresIn   int
}

// APIError is a non-2xx response from the CRM.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoho api returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Zoho CRM REST API and its OAuth accounts server.
type Client struct {
	apiBase      string
	accountsURL  string
	clientID     string
	clientSecret string
	http         *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a client for the given API and accounts base URLs.
func NewClient(apiBase, accountsURL, clientID, clientSecret string) *Client {
	return &Client{
		apiBase:      strings.TrimRight(apiBase, "/"),
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		// Zoho meters API credits per minute; pace outbound calls so a
		// claim with many candidate contacts cannot exhaust the window.
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// RefreshAccessToken performs the refresh-token exchange against the OAuth
// token endpoint. A missing expires_in defaults to 3600 seconds.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (TokenGrant, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return TokenGrant{}, err
	}

	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")

	endpoint := c.accountsURL + "/oauth/v2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenGrant{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return TokenGrant{}, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TokenGrant{}, readAPIError(resp)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return TokenGrant{}, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return TokenGrant{}, fmt.Errorf("token response missing access_token")
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = 3600
	}

	return TokenGrant{AccessToken: payload.AccessToken, ExpiresIn: payload.ExpiresIn}, nil
}

// SearchContactsByName queries the exact-match contact search endpoint with a
// (Full_Name:equals:<value>) criteria string. An empty result is returned as
// an empty slice, never an error.
func (c *Client) SearchContactsByName(ctx context.Context, accessToken, fullName string) ([]Contact, error) {
	criteria := fmt.Sprintf("(Full_Name:equals:%s)", fullName)
	endpoint := c.apiBase + "/crm/v2/Contacts/search?criteria=" + url.QueryEscape(criteria)

	body, err := c.get(ctx, accessToken, endpoint)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var payload struct {
		Data []struct {
			ID       string `json:"id"`
			FullName string `json:"Full_Name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode contact search response: %w", err)
	}

	contacts := make([]Contact, 0, len(payload.Data))
	for _, item := range payload.Data {
		contacts = append(contacts, Contact{ID: item.ID, FullName: item.FullName})
	}
	return contacts, nil
}

// DealsForContact fetches the deals linked to a contact, restricted to the
// bounded field set the matcher needs.
func (c *Client) DealsForContact(ctx context.Context, accessToken, contactID string) ([]Deal, error) {
	endpoint := fmt.Sprintf("%s/crm/v2/Contacts/%s/Deals?fields=%s", c.apiBase, url.PathEscape(contactID), url.QueryEscape(dealFields))

	body, err := c.get(ctx, accessToken, endpoint)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var payload struct {
		Data []map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode deals response: %w", err)
	}

	deals := make([]Deal, 0, len(payload.Data))
	for _, record := range payload.Data {
		deals = append(deals, decodeDeal(record))
	}
	return deals, nil
}

// UpdateDealStage issues the single stage mutation for a deal. A non-2xx
// response fails the update; the remote record is presumed unchanged.
func (c *Client) UpdateDealStage(ctx context.Context, accessToken, dealID, stage string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"data": []map[string]string{{"Stage": stage}},
	})
	if err != nil {
		return fmt.Errorf("marshal deal update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/crm/v2/Deals/%s", c.apiBase, url.PathEscape(dealID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("deal update request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	return nil
}

// get performs an authorized GET. A 204 No Content (Zoho's empty-result
// convention) is returned as a nil body so callers can distinguish "no
// records" from a decode failure.
func (c *Client) get(ctx context.Context, accessToken, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zoho request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read zoho response: %w", err)
	}
	return body, nil
}

// decodeDeal maps a raw CRM record onto a Deal. Account_Name arrives either
// as a plain string or as a {"name": ...} lookup object depending on the
// endpoint; both shapes are handled.
func decodeDeal(record map[string]json.RawMessage) Deal {
	deal := Deal{Fields: make(map[string]string, len(record))}

	for key, raw := range record {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			deal.Fields[key] = text
			continue
		}
		var lookup struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		}
		if err := json.Unmarshal(raw, &lookup); err == nil && lookup.Name != "" {
			deal.Fields[key] = lookup.Name
		}
	}

	deal.ID = deal.Fields["id"]
	deal.Name = deal.Fields["Deal_Name"]
	deal.Stage = deal.Fields["Stage"]
	deal.AccountName = deal.Fields["Account_Name"]

	return deal
}

func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
