package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	aliceEmail := "alice-" + suffix + "@example.test"
	aliceName := "alice-" + suffix

	// Users: create, lookup by id and by both unique indexes.
	alice, err := s.Users().Create(ctx, &model.User{
		Username: aliceName, Email: aliceEmail, PasswordHash: "x", Role: model.RoleProductOwner,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if alice.ID == "" || alice.CreatedAt.IsZero() {
		t.Fatalf("CreateUser: envelope not filled: %+v", alice)
	}
	if got, err := s.Users().GetByID(ctx, alice.ID); err != nil || got.Email != aliceEmail {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByEmail(ctx, aliceEmail); err != nil || got.ID != alice.ID {
		t.Fatalf("GetUserByEmail: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByUsername(ctx, aliceName); err != nil || got.ID != alice.ID {
		t.Fatalf("GetUserByUsername: got=%v err=%v", got, err)
	}

	// A second user with alice's email must be rejected and leave no trace.
	if _, err := s.Users().Create(ctx, &model.User{
		Username: "imposter-" + suffix, Email: aliceEmail, PasswordHash: "x", Role: model.RoleDeveloper,
	}); !errors.Is(err, docstore.ErrDuplicate) {
		t.Fatalf("duplicate email: want ErrDuplicate, got %v", err)
	}
	if _, err := s.Users().GetByUsername(ctx, "imposter-"+suffix); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("rejected create left username claim behind: %v", err)
	}

	bob, err := s.Users().Create(ctx, &model.User{
		Username: "bob-" + suffix, Email: "bob-" + suffix + "@example.test", PasswordHash: "x", Role: model.RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("CreateUser bob: %v", err)
	}

	// Update re-points the unique email index and bumps UpdatedAt.
	renamed, err := s.Users().Update(ctx, alice.ID, func(u *model.User) error {
		u.Email = "alice-new-" + suffix + "@example.test"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if !renamed.UpdatedAt.After(alice.UpdatedAt) {
		t.Fatalf("UpdateUser: UpdatedAt not bumped: %v <= %v", renamed.UpdatedAt, alice.UpdatedAt)
	}
	if _, err := s.Users().GetByEmail(ctx, aliceEmail); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("old email still resolves after update: %v", err)
	}
	if got, err := s.Users().GetByEmail(ctx, renamed.Email); err != nil || got.ID != alice.ID {
		t.Fatalf("new email does not resolve: got=%v err=%v", got, err)
	}

	// Projects and memberships.
	proj, err := s.Projects().Create(ctx, &model.Project{
		Name: "proj-" + suffix, Description: "compliance", OwnerID: alice.ID,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if lst, _, err := s.Projects().ListByOwner(ctx, alice.ID, store.ListOptions{}); err != nil || len(lst) != 1 {
		t.Fatalf("ListByOwner: n=%d err=%v", len(lst), err)
	}

	if lst, _, err := s.Members().ListByProject(ctx, proj.ID, store.ListOptions{}); err != nil || len(lst) != 0 {
		t.Fatalf("ListMembersByProject before add: n=%d err=%v", len(lst), err)
	}
	mem, err := s.Members().Add(ctx, &model.ProjectMember{
		ProjectID: proj.ID, UserID: bob.ID, Role: model.RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	// The same user cannot join the same project twice.
	if _, err := s.Members().Add(ctx, &model.ProjectMember{
		ProjectID: proj.ID, UserID: bob.ID, Role: model.RoleScrumMaster,
	}); !errors.Is(err, docstore.ErrDuplicate) {
		t.Fatalf("duplicate membership: want ErrDuplicate, got %v", err)
	}
	if got, err := s.Members().Get(ctx, proj.ID, bob.ID); err != nil || got.ID != mem.ID {
		t.Fatalf("GetMember: got=%v err=%v", got, err)
	}
	if lst, _, err := s.Members().ListByProject(ctx, proj.ID, store.ListOptions{}); err != nil || len(lst) != 1 {
		t.Fatalf("ListMembersByProject: n=%d err=%v", len(lst), err)
	}
	if lst, _, err := s.Members().ListByUser(ctx, bob.ID, store.ListOptions{}); err != nil || len(lst) != 1 {
		t.Fatalf("ListMembersByUser: n=%d err=%v", len(lst), err)
	}

	// Sprint, story, task, comment chain.
	spr, err := s.Sprints().Create(ctx, &model.Sprint{
		ProjectID: proj.ID, Name: "sprint 1", Status: model.SprintPlanned,
	})
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}
	story, err := s.Stories().Create(ctx, &model.UserStory{
		ProjectID: proj.ID, Title: "as a user", Status: model.StoryBacklog, Points: 3,
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	// Unassigned story must not appear under any sprint.
	if lst, _, err := s.Stories().ListBySprint(ctx, spr.ID, store.ListOptions{}); err != nil || len(lst) != 0 {
		t.Fatalf("ListBySprint before assignment: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Stories().Update(ctx, story.ID, func(us *model.UserStory) error {
		us.SprintID = spr.ID
		us.Status = model.StoryInProgress
		return nil
	}); err != nil {
		t.Fatalf("assign story to sprint: %v", err)
	}
	if lst, _, err := s.Stories().ListBySprint(ctx, spr.ID, store.ListOptions{}); err != nil || len(lst) != 1 {
		t.Fatalf("ListBySprint after assignment: n=%d err=%v", len(lst), err)
	}

	task, err := s.Tasks().Create(ctx, &model.Task{
		UserStoryID: story.ID, Title: "implement", Status: model.TaskTodo,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if lst, _, err := s.Tasks().ListByAssignee(ctx, bob.ID, store.ListOptions{}); err != nil || len(lst) != 0 {
		t.Fatalf("ListByAssignee before assignment: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Tasks().Update(ctx, task.ID, func(tk *model.Task) error {
		tk.AssignedTo = bob.ID
		tk.Status = model.TaskInProgress
		return nil
	}); err != nil {
		t.Fatalf("assign task: %v", err)
	}
	if lst, _, err := s.Tasks().ListByAssignee(ctx, bob.ID, store.ListOptions{}); err != nil || len(lst) != 1 {
		t.Fatalf("ListByAssignee after assignment: n=%d err=%v", len(lst), err)
	}

	cm, err := s.Comments().Create(ctx, &model.Comment{
		TaskID: task.ID, AuthorID: bob.ID, Body: "done soon",
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if lst, _, err := s.Comments().ListByTask(ctx, task.ID, store.ListOptions{}); err != nil || len(lst) != 1 || lst[0].ID != cm.ID {
		t.Fatalf("ListCommentsByTask: n=%d err=%v", len(lst), err)
	}

	// Reports and schedules.
	rep, err := s.Reports().Create(ctx, &model.Report{
		ProjectID: proj.ID, CreatedBy: alice.ID, Title: "burndown", Format: model.ReportPDF,
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	sched, err := s.Schedules().Create(ctx, &model.ReportSchedule{
		ProjectID: proj.ID, ReportID: rep.ID, Frequency: model.ScheduleWeekly,
	})
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if lst, _, err := s.Schedules().ListByReport(ctx, rep.ID, store.ListOptions{}); err != nil || len(lst) != 1 || lst[0].ID != sched.ID {
		t.Fatalf("ListSchedulesByReport: n=%d err=%v", len(lst), err)
	}

	// Sessions: token lookup and expiry bookkeeping live with the caller,
	// the store only guarantees the unique token claim.
	sess, err := s.Sessions().Create(ctx, &model.Session{
		UserID: bob.ID, Token: "tok-" + suffix,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if got, err := s.Sessions().GetByToken(ctx, "tok-"+suffix); err != nil || got.ID != sess.ID {
		t.Fatalf("GetByToken: got=%v err=%v", got, err)
	}
	if _, err := s.Sessions().Create(ctx, &model.Session{UserID: alice.ID, Token: "tok-" + suffix}); !errors.Is(err, docstore.ErrDuplicate) {
		t.Fatalf("duplicate token: want ErrDuplicate, got %v", err)
	}

	// Pagination: page through bob's records one comment at a time.
	if _, err := s.Comments().Create(ctx, &model.Comment{TaskID: task.ID, AuthorID: bob.ID, Body: "second"}); err != nil {
		t.Fatalf("CreateComment second: %v", err)
	}
	page1, cursor, err := s.Comments().ListByTask(ctx, task.ID, store.ListOptions{Limit: 1})
	if err != nil || len(page1) != 1 || cursor == "" {
		t.Fatalf("page 1: n=%d cursor=%q err=%v", len(page1), cursor, err)
	}
	page2, cursor2, err := s.Comments().ListByTask(ctx, task.ID, store.ListOptions{Limit: 1, Cursor: cursor})
	if err != nil || len(page2) != 1 || page2[0].ID == page1[0].ID {
		t.Fatalf("page 2: n=%d err=%v", len(page2), err)
	}
	if page3, _, err := s.Comments().ListByTask(ctx, task.ID, store.ListOptions{Limit: 1, Cursor: cursor2}); err != nil || len(page3) != 0 {
		t.Fatalf("page 3 should be empty: n=%d err=%v", len(page3), err)
	}

	// Deleting alice frees both unique claims for reuse.
	if err := s.Users().Delete(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.Users().GetByID(ctx, alice.ID); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("deleted user still readable: %v", err)
	}
	if _, err := s.Users().GetByUsername(ctx, aliceName); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("deleted user's username still resolves: %v", err)
	}
	alice2, err := s.Users().Create(ctx, &model.User{
		Username: aliceName, Email: renamed.Email, PasswordHash: "y", Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("recreate with freed identity: %v", err)
	}
	if alice2.ID == alice.ID {
		t.Fatalf("recreated user reused old id")
	}

	// Every index entry must still point at a live record.
	reports, err := s.VerifyAll(ctx, false)
	if err != nil {
		t.Fatalf("VerifyAll: %v", err)
	}
	for _, r := range reports {
		if !r.Clean() {
			t.Fatalf("index %s/%s not clean: dangling=%d missing=%d",
				r.Collection, r.Index, len(r.Dangling), len(r.Missing))
		}
	}
}
