package service

import (
	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
)

// CapabilitiesFor returns the affordances of role. Unknown roles get the student set.
func CapabilitiesFor(role models.UserRole) dto.Capabilities {
	switch models.ParseRole(string(role)) {
	case models.RoleTeacher:
		return dto.Capabilities{
			Role:                 models.RoleTeacher,
			ManageSchedule:       true,
			ManageAssignments:    true,
			MarkAttendance:       true,
			AttendanceTabs:       []string{dto.TabToday, dto.TabTeacher},
			DefaultAttendanceTab: dto.TabToday,
		}
	case models.RoleAdmin:
		return dto.Capabilities{
			Role:                 models.RoleAdmin,
			ManageSchedule:       true,
			ManageAssignments:    true,
			MarkAttendance:       true,
			ViewPersonalStats:    true,
			AttendanceTabs:       []string{dto.TabToday, dto.TabTeacher, dto.TabStudent},
			DefaultAttendanceTab: dto.TabToday,
		}
	default:
		return dto.Capabilities{
			Role:                 models.RoleStudent,
			SubmitAssignments:    true,
			ViewPersonalStats:    true,
			AttendanceTabs:       []string{dto.TabStudent},
			DefaultAttendanceTab: dto.TabStudent,
		}
	}
}

// FilterAssignments keeps the assignments user should see: teachers see what they authored,
// students see their group's (everything when they have no group), admins see all. Admins are
// deliberately not narrowed by group the way students are; they manage every assignment.
func FilterAssignments(user models.User, list []models.Assignment) []models.Assignment {
	out := make([]models.Assignment, 0, len(list))
	switch user.EffectiveRole() {
	case models.RoleAdmin:
		return append(out, list...)
	case models.RoleTeacher:
		for _, a := range list {
			if a.TeacherID == user.ID {
				out = append(out, a)
			}
		}
	default:
		if user.GroupID == "" {
			return append(out, list...)
		}
		for _, a := range list {
			if a.GroupID == user.GroupID {
				out = append(out, a)
			}
		}
	}
	return out
}

// FilterScheduleByGroup keeps entries of groupID; an empty groupID keeps everything.
func FilterScheduleByGroup(entries []models.ScheduleEntry, groupID string) []models.ScheduleEntry {
	if groupID == "" {
		return entries
	}
	out := make([]models.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out
}
