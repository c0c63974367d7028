package interpreter

import (
	"regexp"

	"github.com/asaidimu/go-collisions/core/criteria"
)

// keyword maps a lower-case phrase to the canonical value it stands for.
type keyword struct {
	phrase string
	value  string
}

// boroughs are tested in order; the first contained name wins.
var boroughs = []keyword{
	{"brooklyn", "Brooklyn"},
	{"queens", "Queens"},
	{"manhattan", "Manhattan"},
	{"bronx", "Bronx"},
	{"staten island", "Staten Island"},
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// injuryRule sets an injury type when any of its phrases is present.
type injuryRule struct {
	phrases []string
	value   criteria.InjuryType
}

// injuryRules form a precedence chain: an earlier rule shadows later ones
// even when a later phrase is also present. Note that "no injury" can never
// reach its rule, since "injury" is caught first.
var injuryRules = []injuryRule{
	{phrases: []string{"injured", "injury"}, value: criteria.InjuryTypeInjured},
	{phrases: []string{"killed", "fatal", "death"}, value: criteria.InjuryTypeKilled},
	{phrases: []string{"no injury", "no injuries"}, value: criteria.InjuryTypeNone},
}

// vehicleTypes must keep longer and more specific phrases ahead of the
// shorter ones they contain; "car" and "vehicle" are catch-alls and stay last.
var vehicleTypes = []keyword{
	{"station wagon", "Station Wagon/Sport Utility Vehicle"},
	{"pickup truck", "Pick-up Truck"},
	{"sport utility", "Station Wagon/Sport Utility Vehicle"},
	{"pickup", "Pick-up Truck"},
	{"sedan", "Sedan"},
	{"suv", "Station Wagon/Sport Utility Vehicle"},
	{"van", "Van"},
	{"taxi", "Taxi"},
	{"motorcycle", "Motorcycle"},
	{"ambulance", "Ambulance"},
	{"bus", "Bus"},
	{"truck", "Truck"},
	{"car", "Sedan"},
	{"vehicle", "Sedan"},
}

// contributingFactors are scanned in this order. No phrase is a substring of
// another, but a text naming two factors resolves to the earlier one.
var contributingFactors = []keyword{
	{"unsafe speed", "Unsafe Speed"},
	{"failure to yield", "Failure To Yield Right-Of-Way"},
	{"driver inattention", "Driver Inattention/Distraction"},
	{"following too closely", "Following Too Closely"},
	{"backing unsafely", "Backing Unsafely"},
}
