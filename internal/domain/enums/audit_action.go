package enums

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type AuditAction string

// AuditActionFor returns the action name stored in the audit log,
// e.g. approve_job or reject_hire_request.
func AuditActionFor(decision Decision, kind EntityKind) AuditAction {
	return AuditAction(string(decision) + "_" + string(kind))
}
