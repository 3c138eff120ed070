package directus

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"testing"

	"github.com/h2non/gock"

	"baletrack/models"
)

const testBaseURL = "http://directus.test"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	httpClient := &http.Client{}
	gock.InterceptClient(httpClient)
	t.Cleanup(func() {
		gock.RestoreClient(httpClient)
		gock.Off()
	})
	c, err := NewClient(testBaseURL, httpClient)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestListSendsQueryAndDecodesEnvelope(t *testing.T) {
	c := newMockedClient(t)

	gock.New(testBaseURL).
		Get("/items/bales").
		MatchParam("limit", "-1").
		MatchParam("sort", "-date_created").
		MatchParam("fields", regexp.QuoteMeta("*,grower_number.*,box.*")).
		MatchParam("filter", regexp.QuoteMeta(`{"box":{"_eq":"box-1"}}`)).
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{
			{"id": "b2", "bar_code": "789012", "box": map[string]any{"id": "box-1", "box_number": "BX-1"}},
			{"id": "b1", "bar_code": "123456", "box": "box-1"},
		}})

	var bales []models.Bale
	q := Query{
		Limit:  -1,
		Sort:   []string{"-date_created"},
		Fields: []string{"*", "grower_number.*", "box.*"},
		Filter: Eq("box", "box-1"),
	}
	if err := c.List(context.Background(), "bales", q, &bales); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bales) != 2 {
		t.Fatalf("expected 2 bales, got %d", len(bales))
	}
	if bales[0].BoxNumber() != "BX-1" {
		t.Fatalf("expected embedded box on first bale, got %q", bales[0].BoxNumber())
	}
	if bales[1].Box.ID() != "box-1" {
		t.Fatalf("expected bare box id on second bale, got %q", bales[1].Box.ID())
	}
	if !gock.IsDone() {
		t.Fatalf("pending mocks remain")
	}
}

func TestGetMapsStatusToSentinels(t *testing.T) {
	c := newMockedClient(t)

	gock.New(testBaseURL).
		Get("/items/farmers/missing").
		Reply(404).
		JSON(map[string]any{"errors": []map[string]any{{"message": "Route not found", "extensions": map[string]any{"code": "ROUTE_NOT_FOUND"}}}})

	var f models.Farmer
	err := c.Get(context.Background(), "farmers", "missing", nil, &f)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "ROUTE_NOT_FOUND" {
		t.Fatalf("expected APIError with code, got %#v", err)
	}
}

func TestLoginInstallsTokenForLaterRequests(t *testing.T) {
	c := newMockedClient(t)

	gock.New(testBaseURL).
		Post("/auth/login").
		Reply(200).
		JSON(map[string]any{"data": map[string]any{"access_token": "acc-1", "refresh_token": "ref-1", "expires": 900000}})
	gock.New(testBaseURL).
		Get("/users/me").
		MatchHeader("Authorization", "^Bearer acc-1$").
		Reply(200).
		JSON(map[string]any{"data": map[string]any{"id": "u1", "email": "ops@example.com", "first_name": "Ops"}})

	tok, err := c.Login(context.Background(), "ops@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.Access != "acc-1" || tok.Refresh != "ref-1" || tok.Expires.IsZero() {
		t.Fatalf("unexpected token %+v", tok)
	}
	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != "ops@example.com" || me.ID != "u1" {
		t.Fatalf("unexpected profile %+v", me)
	}
}

func TestUnauthorizedRefreshesOnceAndRetries(t *testing.T) {
	c := newMockedClient(t)
	c.SetToken(Token{Access: "stale", Refresh: "ref-1"})

	gock.New(testBaseURL).
		Get("/items/boxes").
		MatchHeader("Authorization", "^Bearer stale$").
		Reply(401).
		JSON(map[string]any{"errors": []map[string]any{{"message": "Token expired.", "extensions": map[string]any{"code": "TOKEN_EXPIRED"}}}})
	gock.New(testBaseURL).
		Post("/auth/refresh").
		Reply(200).
		JSON(map[string]any{"data": map[string]any{"access_token": "fresh", "refresh_token": "ref-2", "expires": 900000}})
	gock.New(testBaseURL).
		Get("/items/boxes").
		MatchHeader("Authorization", "^Bearer fresh$").
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{{"id": "x1", "box_number": "BX-9", "box_status": "available"}}})

	var boxes []models.Box
	if err := c.List(context.Background(), "boxes", Query{}, &boxes); err != nil {
		t.Fatalf("list after refresh: %v", err)
	}
	if len(boxes) != 1 || boxes[0].BoxStatus != models.BoxStatusOpen {
		t.Fatalf("unexpected boxes %+v", boxes)
	}
	if got := c.Token(); got.Access != "fresh" || got.Refresh != "ref-2" {
		t.Fatalf("token not rotated: %+v", got)
	}
}

func TestRefreshSkipsWhenTokenAlreadyRotated(t *testing.T) {
	c := newMockedClient(t)
	c.SetToken(Token{Access: "fresh", Refresh: "ref-2"})

	// No refresh mock is registered, so any call to the service fails.
	if err := c.refresh(context.Background(), "stale"); err != nil {
		t.Fatalf("refresh after rotation: %v", err)
	}
	if got := c.Token(); got.Access != "fresh" || got.Refresh != "ref-2" {
		t.Fatalf("token changed: %+v", got)
	}
}

func TestConcurrentUnauthorizedRefreshesOnce(t *testing.T) {
	c := newMockedClient(t)
	c.SetToken(Token{Access: "stale", Refresh: "ref-1"})

	gock.New(testBaseURL).
		Get("/items/boxes").
		MatchHeader("Authorization", "^Bearer stale$").
		Times(2).
		Reply(401).
		JSON(map[string]any{"errors": []map[string]any{{"message": "Token expired.", "extensions": map[string]any{"code": "TOKEN_EXPIRED"}}}})
	gock.New(testBaseURL).
		Post("/auth/refresh").
		Times(1).
		Reply(200).
		JSON(map[string]any{"data": map[string]any{"access_token": "fresh", "refresh_token": "ref-2", "expires": 900000}})
	gock.New(testBaseURL).
		Get("/items/boxes").
		MatchHeader("Authorization", "^Bearer fresh$").
		Times(2).
		Reply(200).
		JSON(map[string]any{"data": []map[string]any{}})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var boxes []models.Box
			errs[i] = c.List(context.Background(), "boxes", Query{}, &boxes)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if got := c.Token(); got.Access != "fresh" || got.Refresh != "ref-2" {
		t.Fatalf("token not rotated: %+v", got)
	}
}

func TestLogoutClearsTokenWhenRemoteFails(t *testing.T) {
	c := newMockedClient(t)
	c.SetToken(Token{Access: "acc", Refresh: "ref"})

	gock.New(testBaseURL).
		Post("/auth/logout").
		Reply(500)

	if err := c.Logout(context.Background()); err == nil {
		t.Fatalf("expected remote logout error")
	}
	if got := c.Token(); got.Access != "" || got.Refresh != "" {
		t.Fatalf("token should be cleared, got %+v", got)
	}
}

func TestWriteErrorsPropagate(t *testing.T) {
	c := newMockedClient(t)

	gock.New(testBaseURL).
		Post("/items/farmers").
		Reply(400).
		JSON(map[string]any{"errors": []map[string]any{{"message": "Value has to be unique.", "extensions": map[string]any{"code": "RECORD_NOT_UNIQUE"}}}})

	var out models.Farmer
	err := c.Create(context.Background(), "farmers", models.FarmerPatch{GrowerNumber: models.Ptr("G-1")}, &out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 400 || apiErr.Code != "RECORD_NOT_UNIQUE" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}
