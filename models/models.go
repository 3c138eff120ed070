package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Farmer is a registered tobacco grower.
type Farmer struct {
	ID           ID           `json:"id"`
	Status       RecordStatus `json:"status"`
	GrowerNumber string       `json:"grower_number"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	NationalID   string       `json:"national_id"`
	PhoneNumber  string       `json:"phone_number"`
	Email        string       `json:"email"`
	FarmLocation string       `json:"farm_location"`
	DateCreated  *time.Time   `json:"date_created"`
	DateUpdated  *time.Time   `json:"date_updated"`
}

// FullName joins first and last name, skipping blanks.
func (f Farmer) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// Box is a storage box holding zero or more bales.
type Box struct {
	ID          ID           `json:"id"`
	Status      RecordStatus `json:"status"`
	BoxNumber   string       `json:"box_number"`
	Description string       `json:"description"`
	BoxStatus   BoxStatus    `json:"box_status"`
	Bales       []ID         `json:"bales"`
	DateCreated *time.Time   `json:"date_created"`
	DateUpdated *time.Time   `json:"date_updated"`
}

// Bale is a single weighed and graded tobacco bale.
type Bale struct {
	ID               ID                `json:"id"`
	Status           RecordStatus      `json:"status"`
	BarCode          string            `json:"bar_code"`
	LotNumber        string            `json:"lot_number"`
	Mass             *float64          `json:"mass"`
	Price            *float64          `json:"price"`
	Classification   Grade             `json:"classification"`
	HasFault         bool              `json:"has_fault"`
	FaultDescription string            `json:"fault_description"`
	Trade            string            `json:"trade"`
	Buyer            string            `json:"buyer"`
	BuyersMark       string            `json:"buyers_mark"`
	GroupNumber      string            `json:"group_number"`
	SEQ              string            `json:"SEQ"`
	Appeal           string            `json:"appeal"`
	Date             string            `json:"date"`
	Frlsle           string            `json:"frlsle"`
	Var              string            `json:"var"`
	Ro               string            `json:"ro"`
	Rb               string            `json:"rb"`
	Xx               string            `json:"xx"`
	Co               string            `json:"co"`
	Rep              string            `json:"rep"`
	Grower           Reference[Farmer] `json:"grower_number"`
	Box              Reference[Box]    `json:"box"`
	DateCreated      *time.Time        `json:"date_created"`
	DateUpdated      *time.Time        `json:"date_updated"`
}

// FarmerName returns the embedded farmer's name, or "Unknown" when the
// reference was not expanded.
func (b Bale) FarmerName() string {
	if f, ok := b.Grower.Embedded(); ok {
		if name := f.FullName(); name != "" {
			return name
		}
	}
	return "Unknown"
}

// BoxNumber returns the embedded box number, or "" when the reference was not expanded.
func (b Bale) BoxNumber() string {
	if box, ok := b.Box.Embedded(); ok {
		return box.BoxNumber
	}
	return ""
}

// BaleShipment groups bales dispatched together.
type BaleShipment struct {
	ID            ID           `json:"id"`
	Status        RecordStatus `json:"status"`
	Filters       string       `json:"filters"`
	DepartureDate string       `json:"departure_date"`
	ArrivalDate   string       `json:"arrival_date"`
	Bales         []ID         `json:"bales"`
	DateCreated   *time.Time   `json:"date_created"`
	DateUpdated   *time.Time   `json:"date_updated"`
}

// User is the authenticated profile returned by the remote service.
type User struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      ID     `json:"role"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Session is the client-side authenticated identity.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
	BindingToken string
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the session is no longer live at now.
func (s Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// PersistedSession is the single durable session row.
type PersistedSession struct {
	bun.BaseModel `bun:"table:client_sessions,alias:cs"`

	Slot               string    `bun:"slot,pk"`
	UserJSON           string    `bun:"user_json,notnull"`
	SealedAccessToken  string    `bun:"sealed_access_token,notnull"`
	SealedRefreshToken string    `bun:"sealed_refresh_token,notnull"`
	BindingToken       string    `bun:"binding_token,notnull"`
	ExpiresAt          time.Time `bun:"expires_at,notnull"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt          time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog captures user-initiated writes made through this station.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	UserEmail  string    `bun:"user_email,notnull"`
	Action     string    `bun:"action,notnull"`
	Collection string    `bun:"collection,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
