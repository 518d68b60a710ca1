package messaging

import "context"

// MessageSender publishes resolved auction rounds.
type MessageSender interface {
	SendRoundMessage(ctx context.Context, msg *RoundMessage) error
	Close() error
}

// RoundMessage is the published summary of one resolved round
type RoundMessage struct {
	RoundID   string     `json:"roundID"`
	Round     int        `json:"round"`
	Mechanism string     `json:"mechanism"`
	Winner    string     `json:"winner"`
	Payment   string     `json:"payment"`
	FellBack  bool       `json:"fellBack"`
	Bids      []BidEntry `json:"bids"`
}

// BidEntry is one ranked bid of a round
type BidEntry struct {
	Bidder string `json:"bidder"`
	Amount string `json:"amount"`
}
