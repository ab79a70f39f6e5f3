package workflow

import "github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"

// Capability is an independent permission flag held by an actor
type Capability string

const (
	CapApproveAccounts    Capability = "can_approve_accounts"
	CapApproveManager     Capability = "can_approve_manager"
	CapHandleFundTransfer Capability = "can_handle_fund_transfer"

	// capReject is satisfied by either approval capability
	capReject Capability = "can_reject"
)

// edge is one legal transition in the fixed stage graph together with the
// capability that authorizes it.
type edge struct {
	to  Stage
	cap Capability
}

// stageEdges is the single source of truth for transition legality. The
// gate, the engine and the projector all evaluate this table, so an action
// button shown by the projector is exactly an action the engine accepts.
//
// pending_accounts and pending_fund_transfer are optional intermediates:
// accounts sign-off may forward submitted straight to pending_manager, and a
// fund officer may complete a transfer directly from approved. Same-stage
// edges absorb UI retries by upserting the existing workflow event.
var stageEdges = map[Stage][]edge{
	StageSubmitted: {
		{StagePendingAccounts, CapApproveAccounts},
		{StagePendingManager, CapApproveAccounts},
		{StageRejected, capReject},
	},
	StagePendingAccounts: {
		{StagePendingAccounts, CapApproveAccounts},
		{StagePendingManager, CapApproveAccounts},
		{StageRejected, capReject},
	},
	StagePendingManager: {
		{StagePendingManager, CapApproveAccounts},
		{StageApproved, CapApproveManager},
		{StageRejected, capReject},
	},
	StageApproved: {
		{StageApproved, CapApproveManager},
		{StagePendingFundTransfer, CapHandleFundTransfer},
		{StageFundTransferred, CapHandleFundTransfer},
		{StageRejected, capReject},
	},
	StagePendingFundTransfer: {
		{StagePendingFundTransfer, CapHandleFundTransfer},
		{StageFundTransferred, CapHandleFundTransfer},
		{StageRejected, capReject},
	},
	// fund_transferred and rejected are terminal: no outgoing edges
	StageFundTransferred: {},
	StageRejected:        {},
}

// hasCapability reports whether the actor holds the given capability
func hasCapability(actor *models.User, cap Capability) bool {
	switch cap {
	case CapApproveAccounts:
		return actor.CanApproveAccounts
	case CapApproveManager:
		return actor.CanApproveManager
	case CapHandleFundTransfer:
		return actor.CanHandleFundTransfer
	case capReject:
		return actor.CanApproveAccounts || actor.CanApproveManager
	default:
		return false
	}
}

// IsLegalEdge reports whether target is a direct legal successor of from in
// the stage graph, independent of who is asking.
func IsLegalEdge(from, to Stage) bool {
	for _, e := range stageEdges[from] {
		if e.to == to {
			return true
		}
	}
	return false
}

// CanTransition is the permission gate: it reports whether the actor is
// allowed to move a report currently at from into to. Pure predicate, no
// side effects. A false result for an existing edge means the actor lacks
// the capability; callers distinguish the two cases via IsLegalEdge.
func CanTransition(actor *models.User, from, to Stage) bool {
	if actor == nil {
		return false
	}
	for _, e := range stageEdges[from] {
		if e.to == to {
			return hasCapability(actor, e.cap)
		}
	}
	return false
}

// PermittedStages returns the target stages the actor may move a report at
// from into, in table order.
func PermittedStages(actor *models.User, from Stage) []Stage {
	var stages []Stage
	for _, e := range stageEdges[from] {
		if hasCapability(actor, e.cap) {
			stages = append(stages, e.to)
		}
	}
	return stages
}
