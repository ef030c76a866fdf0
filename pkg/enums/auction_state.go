package enums

// AuctionState is derived from an auction's end time; it is never stored.
type AuctionState string

const (
	AuctionStateOpen   AuctionState = "open"
	AuctionStateClosed AuctionState = "closed"
)
