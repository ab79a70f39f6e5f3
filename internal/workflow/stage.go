package workflow

import "github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"

// Stage represents the workflow position of an expense report
type Stage string

const (
	StageSubmitted           Stage = "submitted"
	StagePendingAccounts     Stage = "pending_accounts"
	StagePendingManager      Stage = "pending_manager"
	StageApproved            Stage = "approved"
	StagePendingFundTransfer Stage = "pending_fund_transfer"
	StageFundTransferred     Stage = "fund_transferred"
	StageRejected            Stage = "rejected"
)

var validStages = map[Stage]bool{
	StageSubmitted:           true,
	StagePendingAccounts:     true,
	StagePendingManager:      true,
	StageApproved:            true,
	StagePendingFundTransfer: true,
	StageFundTransferred:     true,
	StageRejected:            true,
}

var terminalStages = map[Stage]bool{
	StageFundTransferred: true,
	StageRejected:        true,
}

// TrackerStages are the stages shown on the employee tracker timeline, in
// order. Progress is measured against this list; pending_fund_transfer is
// reported at the approved position until funds actually move.
var TrackerStages = []Stage{
	StageSubmitted,
	StagePendingAccounts,
	StagePendingManager,
	StageApproved,
	StageFundTransferred,
}

var stageLabels = map[Stage]string{
	StageSubmitted:           "Submitted",
	StagePendingAccounts:     "Accounts Review",
	StagePendingManager:      "Manager Approval",
	StageApproved:            "Approved",
	StagePendingFundTransfer: "Fund Transfer",
	StageFundTransferred:     "Completed",
	StageRejected:            "Rejected",
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if the stage is part of the fixed stage set
func (s Stage) IsValid() bool {
	return validStages[s]
}

// IsTerminal returns true if no further transitions are permitted
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// Label returns the human-facing badge label for the stage
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return stageLabels[StageSubmitted]
}

// trackerIndex returns the position of the stage on the tracker timeline,
// or -1 for rejected.
func (s Stage) trackerIndex() int {
	if s == StageRejected {
		return -1
	}
	if s == StagePendingFundTransfer {
		s = StageApproved
	}
	for i, stage := range TrackerStages {
		if stage == s {
			return i
		}
	}
	return 0
}

// StatusForStage derives the coarse report status from the stage.
// The two must never diverge; every stage write recomputes the status.
func StatusForStage(s Stage) string {
	switch s {
	case StageApproved, StagePendingFundTransfer, StageFundTransferred:
		return models.StatusApproved
	case StageRejected:
		return models.StatusRejected
	default:
		return models.StatusPending
	}
}
