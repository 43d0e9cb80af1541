package reservation

import "github.com/labreserve/lab-reservation-backend/internal/directory"

// Actor is the verified identity a caller supplies. Role verification
// happened upstream (JWT middleware); the coordinator only consults the
// resulting capabilities.
type Actor struct {
	ID       string
	Approver bool
}

// Authorizer decides which lifecycle transitions an actor may drive.
type Authorizer interface {
	CanApprove(actor Actor, res *directory.Resource) bool
	CanCancel(actor Actor, rsv *Reservation) bool
}

// RoleAuthorizer is the default capability mapping: approvers may approve
// anything, and a reservation may be cancelled by its requester or an
// approver.
type RoleAuthorizer struct{}

func (RoleAuthorizer) CanApprove(actor Actor, _ *directory.Resource) bool {
	return actor.Approver
}

func (RoleAuthorizer) CanCancel(actor Actor, rsv *Reservation) bool {
	return actor.Approver || actor.ID == rsv.RequesterID
}
