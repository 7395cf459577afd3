package progress

import "fmt"

type StageID string

const (
	StageBookingCreated    StageID = "bookingCreated"
	StageUtilityBills      StageID = "utilityBills"
	StageAuditPerformed    StageID = "auditPerformed"
	StageFollowUpScheduled StageID = "followUpScheduled"
	StageReportGenerated   StageID = "reportGenerated"
	StageProposalSigned    StageID = "proposalSigned"
	StagePaymentCompleted  StageID = "paymentCompleted"
)

// Stages is the fixed booking lifecycle order. Stage advancement happens in
// the backend; this list only interprets it.
var Stages = []StageID{
	StageBookingCreated,
	StageUtilityBills,
	StageAuditPerformed,
	StageFollowUpScheduled,
	StageReportGenerated,
	StageProposalSigned,
	StagePaymentCompleted,
}

var labels = map[StageID]string{
	StageBookingCreated:    "Booking Created",
	StageUtilityBills:      "Utility Bills",
	StageAuditPerformed:    "Audit Performed",
	StageFollowUpScheduled: "Follow-up Scheduled",
	StageReportGenerated:   "Report Generated",
	StageProposalSigned:    "Proposal Signed",
	StagePaymentCompleted:  "Payment Completed",
}

// Label returns the display string for a stage, or the raw tag when unknown.
func Label(stage StageID) string {
	if l, ok := labels[stage]; ok {
		return l
	}
	return string(stage)
}

// StageIndex returns the zero-based position of stage, or -1 when stage is
// not a member of Stages.
func StageIndex(stage StageID) int {
	for i, s := range Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

// ParseStage validates a stage tag as received on the wire.
func ParseStage(s string) (StageID, error) {
	if StageIndex(StageID(s)) < 0 {
		return "", fmt.Errorf("unknown stage: %q", s)
	}
	return StageID(s), nil
}
