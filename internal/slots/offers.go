package slots

// Attribute names of the offer family.
const (
	AttrSalary      = "salary"
	AttrOrganizer   = "organizer"
	AttrOfferLetter = "offer_letter"
	AttrJoinLetter  = "join_letter"
)

// MaxOffers is the number of offer slots in the student upload template.
const MaxOffers = 10

// Offers is the per-student offer group: "Company N" with its salary,
// organizer and letter links.
var Offers = Family{
	Name:    "offers",
	Primary: "Company {n}",
	Attributes: []Attribute{
		{Name: AttrSalary, Template: "Salary (Company {n})", Numeric: true},
		{Name: AttrOrganizer, Template: "Organized By (Company {n})"},
		{Name: AttrOfferLetter, Template: "Offer Letter Link (Company {n})"},
		{Name: AttrJoinLetter, Template: "Join Letter Link (Company {n})"},
	},
	MaxSlots: MaxOffers,
}
