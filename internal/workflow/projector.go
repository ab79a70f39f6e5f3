package workflow

import (
	"math"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
)

// Action is a workflow operation a viewing actor may be offered
type Action string

const (
	ActionAccountsApprove Action = "accounts_approve"
	ActionManagerApprove  Action = "manager_approve"
	ActionFundTransfer    Action = "fund_transfer"
	ActionReject          Action = "reject"
)

// Actions lists every action the projector evaluates, in display order
var Actions = []Action{
	ActionAccountsApprove,
	ActionManagerApprove,
	ActionFundTransfer,
	ActionReject,
}

// Projection is the human-facing view of a report's workflow position
type Projection struct {
	ProgressPercent float64         `json:"progress_percent"`
	StageLabel      string          `json:"stage_label"`
	IsTerminal      bool            `json:"is_terminal"`
	Eligibility     map[Action]bool `json:"eligibility"`
}

// ActionTarget resolves the stage an action would move a report at current
// into. ok is false when the action has no meaning at the current stage.
func ActionTarget(action Action, current Stage) (Stage, bool) {
	switch action {
	case ActionAccountsApprove:
		if current == StageSubmitted || current == StagePendingAccounts {
			return StagePendingManager, true
		}
	case ActionManagerApprove:
		if current == StagePendingManager {
			return StageApproved, true
		}
	case ActionFundTransfer:
		if current == StageApproved || current == StagePendingFundTransfer {
			return StageFundTransferred, true
		}
	case ActionReject:
		if !current.IsTerminal() {
			return StageRejected, true
		}
	}
	return "", false
}

// Project derives the tracker view for a report as seen by actor. Pure read:
// eligibility is evaluated through the same edge table the engine enforces,
// so an offered action is exactly one Apply would accept.
func Project(actor *models.User, report *models.ExpenseReport) Projection {
	current := Stage(report.CurrentStage)

	eligibility := make(map[Action]bool, len(Actions))
	for _, action := range Actions {
		target, ok := ActionTarget(action, current)
		eligibility[action] = ok && CanTransition(actor, current, target)
	}

	return Projection{
		ProgressPercent: ProgressPercent(current),
		StageLabel:      current.Label(),
		IsTerminal:      current.IsTerminal(),
		Eligibility:     eligibility,
	}
}

// ProgressPercent maps a stage to tracker progress. Rejected reports clamp
// to zero; the happy path climbs in fifths and reaches 100 only at
// fund_transferred.
func ProgressPercent(s Stage) float64 {
	index := s.trackerIndex()
	if index < 0 {
		return 0
	}
	percent := float64(index+1) / float64(len(TrackerStages)) * 100
	return math.Round(percent)
}
