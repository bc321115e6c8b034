package service

import "github.com/aussiebroadwan/fileaccess/internal/files/domain"

// PermissionChecker is the record permission model consulted whenever a
// capability token does not settle a request on its own.
type PermissionChecker interface {
	// CanEditRecord gates token issuance and uploads.
	CanEditRecord(p domain.Principal, rec domain.Record) bool

	// CanReadObject gates downloads without a matching token. It is asked
	// once per object, so a policy may refuse single files of a record.
	CanReadObject(p domain.Principal, rec domain.Record, obj domain.Object) bool
}

// OwnerPermissions lets the owner edit and read a record, and anyone read the
// files of an open access record.
type OwnerPermissions struct{}

func (OwnerPermissions) CanEditRecord(p domain.Principal, rec domain.Record) bool {
	return !p.Anonymous() && p.UserID == rec.OwnerID
}

func (o OwnerPermissions) CanReadObject(p domain.Principal, rec domain.Record, _ domain.Object) bool {
	return rec.OpenAccess || o.CanEditRecord(p, rec)
}
