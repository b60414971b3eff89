package analysis

import "errors"

// Run failures reported to the caller as distinct messages
var (
	// ErrNoPriceData means the price source returned no bars for the range
	ErrNoPriceData = errors.New("no price data found for ticker")

	// ErrNoFactor means the factor source produced no factor values
	ErrNoFactor = errors.New("could not generate factor data")

	// ErrInvalidRange means start is after end
	ErrInvalidRange = errors.New("start date is after end date")

	// ErrTickerRequired means the request has a blank ticker
	ErrTickerRequired = errors.New("ticker is required")
)

// EmptyDatasetMessage explains an empty tear sheet
const EmptyDatasetMessage = "date range too short or factor has no variance"
