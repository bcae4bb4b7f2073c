package utils

import (
	"community-bot/model"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testRoles = model.RoleIDs{Admin: "r-admin", SeniorStaff: "r-senior", Staff: "r-staff", Moderator: "r-mod", Helper: "r-helper"}

func TestCheckPermission(t *testing.T) {
	assert.Equal(t, AdminLevel, CheckPermission(nil, "dev", testRoles, []string{"dev"}))
	assert.Equal(t, StaffLevel, CheckPermission([]string{"r-helper", "r-staff"}, "u", testRoles, nil))
	assert.Equal(t, ModeratorLevel, CheckPermission([]string{"other", "r-mod"}, "u", testRoles, nil))
	assert.Equal(t, MemberLevel, CheckPermission([]string{"other"}, "u", testRoles, nil))
	assert.Equal(t, MemberLevel, CheckPermission([]string{""}, "u", model.RoleIDs{}, nil))
}

func TestRequiredLevel(t *testing.T) {
	assert.Equal(t, HelperLevel, RequiredLevel(model.ActionWarning))
	assert.Equal(t, ModeratorLevel, RequiredLevel(model.ActionTimeout))
	assert.Equal(t, StaffLevel, RequiredLevel(model.ActionTempBan))
	assert.Equal(t, SeniorStaffLevel, RequiredLevel(model.ActionBan))
	assert.Equal(t, AdminLevel, RequiredLevel(model.ActionGangDissolution))
	assert.Equal(t, AdminLevel, RequiredLevel("mass_ban"))
}

func TestCanPunish(t *testing.T) {
	cases := []struct {
		name   string
		actor  Level
		target Level
		action model.ActionKind
		ok     bool
	}{
		{"helper warns member", HelperLevel, MemberLevel, model.ActionWarning, true},
		{"helper cannot kick", HelperLevel, MemberLevel, model.ActionKick, false},
		{"moderator may warn a helper", ModeratorLevel, HelperLevel, model.ActionWarning, true},
		{"staff cannot punish staff", StaffLevel, StaffLevel, model.ActionWarning, false},
		{"senior staff punishes staff", SeniorStaffLevel, StaffLevel, model.ActionBan, true},
		{"senior staff cannot punish admin", SeniorStaffLevel, AdminLevel, model.ActionWarning, false},
		{"admin cannot punish admin of equal rank", AdminLevel, AdminLevel, model.ActionWarning, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := CanPunish(tc.actor, tc.target, tc.action)
			assert.Equal(t, tc.ok, ok)
			if !ok {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestPunishGuard(t *testing.T) {
	guard := PunishGuard(HelperLevel, MemberLevel)
	assert.NoError(t, guard(model.Tier{Action: model.ActionWarning}))

	err := guard(model.Tier{Action: model.ActionBan})
	assert.ErrorIs(t, err, model.ErrNotPermitted)
	var perr *model.PermissionError
	assert.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Reason, "ban")
}
