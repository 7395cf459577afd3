package progress

// IsStageCompleted reports whether stage is at or before the booking's
// current stage. An unknown current stage completes nothing, and so does an
// unknown stage argument.
func IsStageCompleted(b Booking, stage StageID) bool {
	idx := StageIndex(stage)
	if idx < 0 {
		return false
	}
	return idx <= StageIndex(b.CurrentStage)
}

// ProgressPercentage maps the current stage onto [0,100] in equal steps.
func ProgressPercentage(b Booking) float64 {
	idx := StageIndex(b.CurrentStage)
	if idx <= 0 {
		// Covers the first stage and unknown stages (-1).
		return 0
	}
	return float64(idx) / float64(len(Stages)-1) * 100
}

// IsLatestAndHighlighted reports whether stage is the current stage and its
// completion precondition already holds.
func IsLatestAndHighlighted(stage, current StageID, d Details) bool {
	if stage != current {
		return false
	}
	switch stage {
	case StageBookingCreated, StageReportGenerated:
		return true
	case StageUtilityBills:
		return d.UtilityBills.Count > 0
	case StageProposalSigned:
		return d.Proposal.CompletedContractLink != ""
	case StagePaymentCompleted:
		return d.Payment.Status == PaymentStatusPaid
	default:
		return false
	}
}

type Step struct {
	ID          StageID `json:"id"`
	Label       string  `json:"label"`
	Index       int     `json:"index"`
	Completed   bool    `json:"completed"`
	Current     bool    `json:"current"`
	Highlighted bool    `json:"highlighted"`
}

type Summary struct {
	CurrentStage StageID `json:"currentStage"`
	CurrentLabel string  `json:"currentLabel"`
	Percentage   float64 `json:"percentage"`
	Steps        []Step  `json:"steps"`
}

// Timeline evaluates every stage against the booking snapshot.
func Timeline(b Booking) []Step {
	d := b.Details()
	out := make([]Step, 0, len(Stages))
	for i, s := range Stages {
		out = append(out, Step{
			ID:          s,
			Label:       Label(s),
			Index:       i,
			Completed:   IsStageCompleted(b, s),
			Current:     s == b.CurrentStage,
			Highlighted: IsLatestAndHighlighted(s, b.CurrentStage, d),
		})
	}
	return out
}

func Summarize(b Booking) Summary {
	return Summary{
		CurrentStage: b.CurrentStage,
		CurrentLabel: Label(b.CurrentStage),
		Percentage:   ProgressPercentage(b),
		Steps:        Timeline(b),
	}
}
