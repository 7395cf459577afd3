package progress

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is a read-only snapshot of a backend booking. Only CurrentStage and
// the three detail blocks drive progress; the rest is passed through for display.
type Booking struct {
	BookingNumber      string             `json:"bookingNumber"`
	CurrentStage       StageID            `json:"currentStage"`
	ServiceName        string             `json:"serviceName,omitempty"`
	Address            string             `json:"address,omitempty"`
	ScheduledAt        *time.Time         `json:"scheduledAt,omitempty"`
	UtilityBillDetails UtilityBillDetails `json:"utilityBillDetails"`
	ProposalDetails    ProposalDetails    `json:"proposalDetails"`
	PaymentDetails     PaymentDetails     `json:"paymentDetails"`
	Auditor            *Auditor           `json:"auditor,omitempty"`
}

type UtilityBillDetails struct {
	Count int `json:"count"`
}

type ProposalDetails struct {
	ContractID            string `json:"contractId,omitempty"`
	CompletedContractLink string `json:"completedContractLink,omitempty"`
}

const PaymentStatusPaid = "Paid"

type PaymentDetails struct {
	Status string           `json:"status"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type Auditor struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// Details returns the fields the highlight predicate reads.
func (b Booking) Details() Details {
	return Details{
		UtilityBills: b.UtilityBillDetails,
		Proposal:     b.ProposalDetails,
		Payment:      b.PaymentDetails,
	}
}

// Details is the subset of a booking consulted when highlighting the active stage.
type Details struct {
	UtilityBills UtilityBillDetails
	Proposal     ProposalDetails
	Payment      PaymentDetails
}
