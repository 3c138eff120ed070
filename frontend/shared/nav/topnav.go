package nav

import (
	"context"

	sessioncontext "baletrack/frontend/shared/context"
)

// Link is one entry in the top navigation.
type Link struct {
	Label string
	Href  string
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	DisplayName string
	Email       string
	Countdown   string
	// RemainingMS seeds the in-page countdown ticker.
	RemainingMS int64
	Links       []Link
	SignedIn    bool
}

var links = []Link{
	{Label: "Dashboard", Href: "/dashboard"},
	{Label: "Bales", Href: "/bales"},
	{Label: "Farmers", Href: "/farmers"},
	{Label: "Boxes", Href: "/boxes"},
	{Label: "Shipments", Href: "/shipments"},
	{Label: "Scan", Href: "/scan"},
	{Label: "Exports", Href: "/exports"},
	{Label: "Help", Href: "/help"},
}

func BuildTopNavData(ctx context.Context) TopNavData {
	session, ok := sessioncontext.GetSessionFromContext(ctx)
	if !ok {
		return TopNavData{}
	}
	return TopNavData{
		DisplayName: session.User.DisplayName(),
		Email:       session.User.Email,
		Countdown:   sessioncontext.Countdown(ctx),
		RemainingMS: sessioncontext.Remaining(ctx).Milliseconds(),
		Links:       links,
		SignedIn:    true,
	}
}
