package workflow

import (
	"testing"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
)

func TestActionTarget(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		current Stage
		want    Stage
		ok      bool
	}{
		{"accounts approve from submitted", ActionAccountsApprove, StageSubmitted, StagePendingManager, true},
		{"accounts approve from review queue", ActionAccountsApprove, StagePendingAccounts, StagePendingManager, true},
		{"accounts approve meaningless later", ActionAccountsApprove, StagePendingManager, "", false},
		{"manager approve", ActionManagerApprove, StagePendingManager, StageApproved, true},
		{"manager approve wrong stage", ActionManagerApprove, StageSubmitted, "", false},
		{"fund transfer from approved", ActionFundTransfer, StageApproved, StageFundTransferred, true},
		{"fund transfer from queue", ActionFundTransfer, StagePendingFundTransfer, StageFundTransferred, true},
		{"fund transfer too early", ActionFundTransfer, StagePendingManager, "", false},
		{"reject from submitted", ActionReject, StageSubmitted, StageRejected, true},
		{"reject from approved", ActionReject, StageApproved, StageRejected, true},
		{"reject terminal", ActionReject, StageFundTransferred, "", false},
		{"reject rejected", ActionReject, StageRejected, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActionTarget(tt.action, tt.current)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ActionTarget(%q, %q) = (%q, %v), want (%q, %v)",
					tt.action, tt.current, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestProjectEligibility(t *testing.T) {
	report := func(stage Stage) *models.ExpenseReport {
		return &models.ExpenseReport{ID: "r1", CurrentStage: stage.String()}
	}

	tests := []struct {
		name   string
		actor  *models.User
		report *models.ExpenseReport
		want   map[Action]bool
	}{
		{
			name:   "accounts reviewer on submitted",
			actor:  accountsUser(),
			report: report(StageSubmitted),
			want: map[Action]bool{
				ActionAccountsApprove: true,
				ActionManagerApprove:  false,
				ActionFundTransfer:    false,
				ActionReject:          true,
			},
		},
		{
			name:   "manager on pending manager",
			actor:  managerUser(),
			report: report(StagePendingManager),
			want: map[Action]bool{
				ActionAccountsApprove: false,
				ActionManagerApprove:  true,
				ActionFundTransfer:    false,
				ActionReject:          true,
			},
		},
		{
			name:   "fund officer on approved",
			actor:  fundUser(),
			report: report(StageApproved),
			want: map[Action]bool{
				ActionAccountsApprove: false,
				ActionManagerApprove:  false,
				ActionFundTransfer:    true,
				ActionReject:          false,
			},
		},
		{
			name:   "employee sees no actions",
			actor:  employeeUser(),
			report: report(StagePendingManager),
			want: map[Action]bool{
				ActionAccountsApprove: false,
				ActionManagerApprove:  false,
				ActionFundTransfer:    false,
				ActionReject:          false,
			},
		},
		{
			name:   "nothing on terminal stage",
			actor:  managerUser(),
			report: report(StageRejected),
			want: map[Action]bool{
				ActionAccountsApprove: false,
				ActionManagerApprove:  false,
				ActionFundTransfer:    false,
				ActionReject:          false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projection := Project(tt.actor, tt.report)
			for action, want := range tt.want {
				if projection.Eligibility[action] != want {
					t.Errorf("Eligibility[%q] = %v, want %v", action, projection.Eligibility[action], want)
				}
			}
		})
	}
}

// Every action the projector offers must be accepted by the permission gate
// for the same actor and stage.
func TestProjectionMatchesGate(t *testing.T) {
	actors := []*models.User{accountsUser(), managerUser(), fundUser(), employeeUser()}
	stages := []Stage{
		StageSubmitted, StagePendingAccounts, StagePendingManager,
		StageApproved, StagePendingFundTransfer, StageFundTransferred, StageRejected,
	}

	for _, actor := range actors {
		for _, stage := range stages {
			report := &models.ExpenseReport{ID: "r1", CurrentStage: stage.String()}
			projection := Project(actor, report)
			for action, eligible := range projection.Eligibility {
				if !eligible {
					continue
				}
				target, ok := ActionTarget(action, stage)
				if !ok {
					t.Errorf("actor %s at %q offered %q with no target", actor.ID, stage, action)
					continue
				}
				if !CanTransition(actor, stage, target) {
					t.Errorf("actor %s at %q offered %q but gate refuses %q -> %q",
						actor.ID, stage, action, stage, target)
				}
			}
		}
	}
}

func TestProjectTerminalAndProgress(t *testing.T) {
	rejected := Project(employeeUser(), &models.ExpenseReport{CurrentStage: StageRejected.String()})
	if !rejected.IsTerminal {
		t.Error("rejected projection should be terminal")
	}
	if rejected.ProgressPercent != 0 {
		t.Errorf("rejected progress = %v, want 0", rejected.ProgressPercent)
	}
	if rejected.StageLabel != "Rejected" {
		t.Errorf("rejected label = %q", rejected.StageLabel)
	}

	done := Project(employeeUser(), &models.ExpenseReport{CurrentStage: StageFundTransferred.String()})
	if !done.IsTerminal || done.ProgressPercent != 100 {
		t.Errorf("completed projection = %+v, want terminal at 100", done)
	}
}
