package types

import "http-codes-api/models"

// FilterOutcome enumerates the expected, caller-recoverable results of a
// saved-filter mutation. Storage failures are not outcomes; they surface
// as errors and map to a generic 500.
type FilterOutcome int

const (
	FilterSuccess FilterOutcome = iota
	FilterMissingMandatory
	FilterDuplicateName
	FilterInvalidCodes
	FilterInvalidID
)

// Message returns the user-facing text for an outcome of a create/save
// operation.
func (o FilterOutcome) Message() string {
	switch o {
	case FilterSuccess:
		return "Filter Saved Successfully"
	case FilterMissingMandatory:
		return "Name and Query is mandatory"
	case FilterDuplicateName:
		return "Filters with Name already exists"
	case FilterInvalidCodes:
		return "Invalid Codes are present"
	case FilterInvalidID:
		return "Invalid Filter Id"
	default:
		return "Please try again later"
	}
}

// ResultResponse is the body of create and delete responses.
type ResultResponse struct {
	Message string `json:"message"`
	Result  bool   `json:"result"`
}

// FilterUpdateResponse is the body of update responses. ErrorMessage is
// empty on success and Filter carries the updated record.
type FilterUpdateResponse struct {
	ErrorMessage string              `json:"errorMessage"`
	Result       bool                `json:"result"`
	Filter       *models.SavedFilter `json:"filter"`
}
