package utils

import (
	"community-bot/model"
	"fmt"
	"slices"
)

// Level is a rank in the staff hierarchy. Higher outranks lower.
type Level int

// Permission levels
const (
	MemberLevel Level = iota
	HelperLevel
	ModeratorLevel
	StaffLevel
	SeniorStaffLevel
	AdminLevel
)

func (l Level) String() string {
	switch l {
	case HelperLevel:
		return "helper"
	case ModeratorLevel:
		return "moderator"
	case StaffLevel:
		return "staff"
	case SeniorStaffLevel:
		return "senior_staff"
	case AdminLevel:
		return "admin"
	default:
		return "member"
	}
}

// CheckPermission returns the highest level any of the member's roles grants.
// Developers are treated as admins.
func CheckPermission(memberRoleIDs []string, userID string, roles model.RoleIDs, developerUserIDs []string) Level {
	if slices.Contains(developerUserIDs, userID) {
		return AdminLevel
	}

	ranked := []struct {
		roleID string
		level  Level
	}{
		{roles.Admin, AdminLevel},
		{roles.SeniorStaff, SeniorStaffLevel},
		{roles.Staff, StaffLevel},
		{roles.Moderator, ModeratorLevel},
		{roles.Helper, HelperLevel},
	}
	for _, r := range ranked {
		if r.roleID != "" && slices.Contains(memberRoleIDs, r.roleID) {
			return r.level
		}
	}
	return MemberLevel
}

// RequiredLevel is the lowest level allowed to issue a punishment of kind action.
// Unknown kinds need an admin.
func RequiredLevel(action model.ActionKind) Level {
	switch action {
	case model.ActionWarning:
		return HelperLevel
	case model.ActionMute, model.ActionTimeout, model.ActionKick, model.ActionFine, model.ActionVehicleImpound:
		return ModeratorLevel
	case model.ActionTempBan, model.ActionGangWarning:
		return StaffLevel
	case model.ActionBan, model.ActionGangSuspension:
		return SeniorStaffLevel
	default:
		return AdminLevel
	}
}

// CanPunish reports whether an actor may issue action against a target.
// Staff cannot punish staff of equal or higher rank, and only admins can
// punish admins.
func CanPunish(actor, target Level, action model.ActionKind) (bool, string) {
	if actor < RequiredLevel(action) {
		return false, fmt.Sprintf("You don't have permission to issue %s punishments", action)
	}
	if target >= StaffLevel && actor <= target {
		return false, "You cannot punish staff members of equal or higher rank"
	}
	if target == AdminLevel && actor != AdminLevel {
		return false, "Only admins can punish other admins"
	}
	return true, ""
}

// PunishGuard returns a tier check that fails with a model.PermissionError when
// actor may not issue the tier to target.
func PunishGuard(actor, target Level) func(model.Tier) error {
	return func(t model.Tier) error {
		if ok, reason := CanPunish(actor, target, t.Action); !ok {
			return model.Denied(reason)
		}
		return nil
	}
}
