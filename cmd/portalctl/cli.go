package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/internal/service"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type authCommands interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) *models.User
	UserProfile(ctx context.Context) (*models.ProfileResult, error)
}

type scheduleCommands interface {
	Page(ctx context.Context, week, day string) (*dto.SchedulePage, error)
	Delete(ctx context.Context, id string, confirm bool) error
}

type assignmentCommands interface {
	List(ctx context.Context) (*dto.AssignmentsPage, error)
	Get(ctx context.Context, id string) (*dto.AssignmentDetail, error)
	Delete(ctx context.Context, id string, confirm bool) error
}

type attendanceCommands interface {
	Page(ctx context.Context, view service.AttendanceView) (*dto.AttendancePage, error)
	Stats(ctx context.Context, studentID string) (*models.AttendanceStats, error)
}

type commandLine struct {
	auth        authCommands
	schedule    scheduleCommands
	assignments assignmentCommands
	attendance  attendanceCommands

	in  *bufio.Reader
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME               - sign in, the password is prompted next")
	fmt.Fprintln(cli.out, "  logout                                 - forget the stored session")
	fmt.Fprintln(cli.out, "  whoami                                 - show the signed-in user")
	fmt.Fprintln(cli.out, "  profile                                - fetch the profile from the backend")
	fmt.Fprintln(cli.out, "  schedule [-week current|next] [-day D] - list classes for a day")
	fmt.Fprintln(cli.out, "  assignments                            - list assignments")
	fmt.Fprintln(cli.out, "  assignment -id ID                      - show one assignment")
	fmt.Fprintln(cli.out, "  attendance                             - list your attendance records")
	fmt.Fprintln(cli.out, "  stats [-student ID]                    - attendance statistics")
	fmt.Fprintln(cli.out, "  schedule-delete -id ID                 - delete a class after confirmation")
	fmt.Fprintln(cli.out, "  assignment-delete -id ID               - delete an assignment after confirmation")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	err := cli.dispatch(ctx, args[1], args[2:])
	if appErrors.HasCode(err, appErrors.ErrSessionExpired.Code) || appErrors.HasCode(err, appErrors.ErrNotAuthenticated.Code) {
		return fmt.Errorf("%w: run `portalctl login -username USERNAME`", err)
	}
	return err
}

func (cli *commandLine) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "login":
		fs := cli.flagSet(name)
		username := fs.String("username", "", "Backend username. The password will be prompted next.")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *username == "" {
			fs.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			fs.Usage()
			return errHelp
		}
		return cli.login(ctx, *username, string(pwd))
	case "logout":
		if err := cli.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Signed out.")
		return nil
	case "whoami":
		return cli.whoami(ctx)
	case "profile":
		return cli.profile(ctx)
	case "schedule":
		fs := cli.flagSet(name)
		week := fs.String("week", dto.WeekCurrent, "current or next")
		day := fs.String("day", "", "monday..saturday (default monday)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.printSchedule(ctx, *week, *day)
	case "assignments":
		return cli.printAssignments(ctx)
	case "assignment":
		fs := cli.flagSet(name)
		id := fs.String("id", "", "Assignment ID")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return cli.printAssignment(ctx, *id)
	case "attendance":
		return cli.printAttendance(ctx)
	case "stats":
		fs := cli.flagSet(name)
		student := fs.String("student", "", "Student ID (teachers and admins only)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.printStats(ctx, *student)
	case "schedule-delete", "assignment-delete":
		fs := cli.flagSet(name)
		id := fs.String("id", "", "ID of the record to delete")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if name == "schedule-delete" {
			return cli.confirmDelete(ctx, "class "+*id, func(ctx context.Context) error {
				return cli.schedule.Delete(ctx, *id, true)
			})
		}
		return cli.confirmDelete(ctx, "assignment "+*id, func(ctx context.Context) error {
			return cli.assignments.Delete(ctx, *id, true)
		})
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) login(ctx context.Context, username, password string) error {
	session, err := cli.auth.Login(ctx, models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Signed in as %s (%s).\n", session.User.DisplayName(), session.User.EffectiveRole())
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	user := cli.auth.CurrentUser(ctx)
	if user == nil {
		return appErrors.ErrNotAuthenticated
	}
	fmt.Fprintf(cli.out, "%s <%s> role=%s\n", user.DisplayName(), user.Email, user.EffectiveRole())
	return nil
}

func (cli *commandLine) profile(ctx context.Context) error {
	result, err := cli.auth.UserProfile(ctx)
	if err != nil {
		return err
	}
	if result.User == nil {
		return appErrors.Clone(appErrors.ErrTokenRejected, result.Detail)
	}
	u := result.User
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Username\t%s\n", u.Username)
	fmt.Fprintf(w, "Name\t%s\n", u.FullName)
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Phone\t%s\n", u.Phone)
	fmt.Fprintf(w, "Role\t%s\n", u.EffectiveRole())
	return w.Flush()
}

func (cli *commandLine) printSchedule(ctx context.Context, week, day string) error {
	page, err := cli.schedule.Page(ctx, week, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s\n", capitalize(page.Day), page.Date)
	if len(page.Entries) == 0 {
		fmt.Fprintln(cli.out, "No classes.")
		return nil
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTIME\tSUBJECT\tTEACHER\tGROUP\tROOM\tID")
	for _, e := range page.Entries {
		fmt.Fprintf(w, "%d\t%s-%s\t%s\t%s\t%s\t%s\t%s\n", e.ClassNumber, e.StartTime, e.EndTime, e.Subject, e.TeacherLabel, e.GroupLabel, e.RoomLabel, e.ID)
	}
	return w.Flush()
}

func (cli *commandLine) printAssignments(ctx context.Context) error {
	page, err := cli.assignments.List(ctx)
	if err != nil {
		return err
	}
	if len(page.Assignments) == 0 {
		fmt.Fprintln(cli.out, "No assignments.")
		return nil
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDEADLINE\tSTATUS\tTEACHER\tGROUP")
	for _, a := range page.Assignments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Title, a.DeadlineDisplay, a.DeadlineStatus, a.TeacherName, a.GroupName)
	}
	return w.Flush()
}

func (cli *commandLine) printAssignment(ctx context.Context, id string) error {
	detail, err := cli.assignments.Get(ctx, id)
	if err != nil {
		return err
	}
	a := detail.Assignment
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Title\t%s\n", a.Title)
	fmt.Fprintf(w, "Deadline\t%s (%s)\n", a.DeadlineDisplay, a.DeadlineStatus)
	fmt.Fprintf(w, "Teacher\t%s\n", a.TeacherName)
	fmt.Fprintf(w, "Group\t%s\n", a.GroupName)
	fmt.Fprintf(w, "Files\t%s\n", strings.Join(a.FileIDs, ", "))
	if err := w.Flush(); err != nil {
		return err
	}
	if a.Description != "" {
		fmt.Fprintf(cli.out, "\n%s\n", a.Description)
	}
	return nil
}

func (cli *commandLine) printAttendance(ctx context.Context) error {
	page, err := cli.attendance.Page(ctx, service.AttendanceView{Tab: dto.TabStudent})
	if err != nil {
		return err
	}
	for _, warning := range page.Warnings {
		fmt.Fprintf(cli.out, "warning: %s\n", warning)
	}
	if len(page.Records) == 0 {
		fmt.Fprintln(cli.out, "No attendance records.")
		return nil
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSUBJECT\tTIME\tSTATUS")
	for _, r := range page.Records {
		fmt.Fprintf(w, "%s\t%s\t%s-%s\t%s\n", r.Date, r.Subject, r.StartTime, r.EndTime, r.Status)
	}
	return w.Flush()
}

func (cli *commandLine) printStats(ctx context.Context, studentID string) error {
	stats, err := cli.attendance.Stats(ctx, studentID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total classes\t%d\n", stats.TotalClasses)
	fmt.Fprintf(w, "Present\t%d\n", stats.PresentCount)
	fmt.Fprintf(w, "Absent\t%d\n", stats.AbsentCount)
	fmt.Fprintf(w, "Late\t%d\n", stats.LateCount)
	fmt.Fprintf(w, "Excused\t%d\n", stats.ExcusedCount)
	fmt.Fprintf(w, "Attendance\t%.1f%%\n", stats.AttendancePercentage)
	fmt.Fprintf(w, "Missed hours\t%.0f\n", stats.MissedHours)
	return w.Flush()
}

// confirmDelete asks before running del. Anything but y/yes cancels without calling del.
func (cli *commandLine) confirmDelete(ctx context.Context, what string, del func(context.Context) error) error {
	fmt.Fprintf(cli.out, "Delete %s? [y/N]: ", what)
	answer, err := cli.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		fmt.Fprintln(cli.out, "Cancelled.")
		return nil
	}
	if err := del(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deleted %s.\n", what)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type overrideStore interface {
	Get(ctx context.Context, assignmentID string) (*models.LocalOverride, error)
	All(ctx context.Context) (map[string]models.LocalOverride, error)
	Put(ctx context.Context, o models.LocalOverride) error
	Delete(ctx context.Context, assignmentID string) error
}
