package filter

// Column names of the collision dataset that criteria are evaluated against.
const (
	ColumnBorough             = "borough"
	ColumnYear                = "year"
	ColumnVehicleType1        = "vehicle_type_code_1"
	ColumnVehicleType2        = "vehicle_type_code_2"
	ColumnContributingFactor1 = "contributing_factor_vehicle_1"
	ColumnContributingFactor2 = "contributing_factor_vehicle_2"
	ColumnPersonsInjured      = "number_of_persons_injured"
	ColumnPersonsKilled       = "number_of_persons_killed"
	ColumnOnStreetName        = "on_street_name"
	ColumnCrossStreetName     = "cross_street_name"
	ColumnOffStreetName       = "off_street_name"
)

// SearchColumns are the columns scanned by free-text search, in scan order.
var SearchColumns = []string{
	ColumnBorough,
	ColumnVehicleType1,
	ColumnVehicleType2,
	ColumnContributingFactor1,
	ColumnContributingFactor2,
	ColumnOnStreetName,
	ColumnCrossStreetName,
	ColumnOffStreetName,
}
