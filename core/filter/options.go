package filter

import (
	"github.com/asaidimu/go-collisions/core/criteria"
	"github.com/asaidimu/go-collisions/core/dataset"
)

// FilterOptions lists the selectable values for each criterion, as offered
// to dropdown-style clients.
type FilterOptions struct {
	Boroughs            []string              `json:"boroughs"`
	Years               []int64               `json:"years"`
	VehicleTypes        []string              `json:"vehicle_types"`
	ContributingFactors []string              `json:"contributing_factors"`
	InjuryTypes         []criteria.InjuryType `json:"injury_types"`
}

// Options collects the distinct values present in ds for every criterion.
// Dual-column attributes report the union of both columns.
func Options(ds *dataset.Dataset) FilterOptions {
	if ds == nil {
		ds = dataset.New(nil, nil)
	}
	return FilterOptions{
		Boroughs:            ds.Distinct(ColumnBorough),
		Years:               ds.DistinctInts(ColumnYear),
		VehicleTypes:        ds.Distinct(ColumnVehicleType1, ColumnVehicleType2),
		ContributingFactors: ds.Distinct(ColumnContributingFactor1, ColumnContributingFactor2),
		InjuryTypes:         append([]criteria.InjuryType(nil), criteria.InjuryTypes...),
	}
}
