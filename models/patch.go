package models

// Patch types carry partial records for create and update. A nil field is
// left untouched on the remote record.

type FarmerPatch struct {
	Status       *RecordStatus `json:"status,omitempty"`
	GrowerNumber *string       `json:"grower_number,omitempty"`
	FirstName    *string       `json:"first_name,omitempty"`
	LastName     *string       `json:"last_name,omitempty"`
	NationalID   *string       `json:"national_id,omitempty"`
	PhoneNumber  *string       `json:"phone_number,omitempty"`
	Email        *string       `json:"email,omitempty"`
	FarmLocation *string       `json:"farm_location,omitempty"`
}

type BoxPatch struct {
	Status      *RecordStatus `json:"status,omitempty"`
	BoxNumber   *string       `json:"box_number,omitempty"`
	Description *string       `json:"description,omitempty"`
	BoxStatus   *BoxStatus    `json:"box_status,omitempty"`
}

type BalePatch struct {
	Status           *RecordStatus      `json:"status,omitempty"`
	BarCode          *string            `json:"bar_code,omitempty"`
	LotNumber        *string            `json:"lot_number,omitempty"`
	Mass             *Null[float64]     `json:"mass,omitempty"`
	Price            *Null[float64]     `json:"price,omitempty"`
	Classification   *Grade             `json:"classification,omitempty"`
	HasFault         *bool              `json:"has_fault,omitempty"`
	FaultDescription *string            `json:"fault_description,omitempty"`
	Trade            *string            `json:"trade,omitempty"`
	Buyer            *string            `json:"buyer,omitempty"`
	BuyersMark       *string            `json:"buyers_mark,omitempty"`
	GroupNumber      *string            `json:"group_number,omitempty"`
	SEQ              *string            `json:"SEQ,omitempty"`
	Appeal           *string            `json:"appeal,omitempty"`
	Date             *string            `json:"date,omitempty"`
	Frlsle           *string            `json:"frlsle,omitempty"`
	Var              *string            `json:"var,omitempty"`
	Ro               *string            `json:"ro,omitempty"`
	Rb               *string            `json:"rb,omitempty"`
	Xx               *string            `json:"xx,omitempty"`
	Co               *string            `json:"co,omitempty"`
	Rep              *string            `json:"rep,omitempty"`
	Grower           *Reference[Farmer] `json:"grower_number,omitempty"`
	Box              *Reference[Box]    `json:"box,omitempty"`
}

// NormalizeFault clears the fault description whenever the patch sets the
// fault flag to false.
func (p *BalePatch) NormalizeFault() {
	if p.HasFault != nil && !*p.HasFault {
		empty := ""
		p.FaultDescription = &empty
	}
}

type ShipmentPatch struct {
	Status        *RecordStatus `json:"status,omitempty"`
	Filters       *string       `json:"filters,omitempty"`
	DepartureDate *Null[string] `json:"departure_date,omitempty"`
	ArrivalDate   *Null[string] `json:"arrival_date,omitempty"`
	Bales         *[]ID         `json:"bales,omitempty"`
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
