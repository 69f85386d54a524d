package store

import (
	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
)

// Index names, shared between the collection definitions below and the
// typed accessors in kv.go.
const (
	idxByEmail    = "by_email"
	idxByUsername = "by_username"
	idxByToken    = "by_token"
	idxByUser     = "by_user"
	idxByOwner    = "by_owner"
	idxByProject  = "by_project"
	idxBySprint   = "by_sprint"
	idxByStory    = "by_story"
	idxByAssignee = "by_assignee"
	idxByTask     = "by_task"
	idxByAuthor   = "by_author"
	idxByCreator  = "by_creator"
	idxByReport   = "by_report"
)

// Non-unique index keys end with the record id so entries for different
// records never collide; unique index keys carry only the indexed
// fields. See docstore.Index.

func userCollection() docstore.Collection[*model.User] {
	return docstore.Collection[*model.User]{
		Name: "users",
		Indexes: []docstore.Index[*model.User]{
			{Name: idxByEmail, Unique: true, Keys: func(u *model.User) [][]string {
				return [][]string{{u.Email}}
			}},
			{Name: idxByUsername, Unique: true, Keys: func(u *model.User) [][]string {
				return [][]string{{u.Username}}
			}},
		},
	}
}

func sessionCollection() docstore.Collection[*model.Session] {
	return docstore.Collection[*model.Session]{
		Name: "sessions",
		Indexes: []docstore.Index[*model.Session]{
			{Name: idxByToken, Unique: true, Keys: func(s *model.Session) [][]string {
				return [][]string{{s.Token}}
			}},
			{Name: idxByUser, Keys: func(s *model.Session) [][]string {
				return [][]string{{s.UserID, s.ID}}
			}},
		},
	}
}

func projectCollection() docstore.Collection[*model.Project] {
	return docstore.Collection[*model.Project]{
		Name: "projects",
		Indexes: []docstore.Index[*model.Project]{
			{Name: idxByOwner, Keys: func(p *model.Project) [][]string {
				return [][]string{{p.OwnerID, p.ID}}
			}},
		},
	}
}

func memberCollection() docstore.Collection[*model.ProjectMember] {
	return docstore.Collection[*model.ProjectMember]{
		Name: "project_members",
		Indexes: []docstore.Index[*model.ProjectMember]{
			// both directions of the membership pair are unique: a user
			// joins a project at most once
			{Name: idxByProject, Unique: true, Keys: func(m *model.ProjectMember) [][]string {
				return [][]string{{m.ProjectID, m.UserID}}
			}},
			{Name: idxByUser, Unique: true, Keys: func(m *model.ProjectMember) [][]string {
				return [][]string{{m.UserID, m.ProjectID}}
			}},
		},
	}
}

func sprintCollection() docstore.Collection[*model.Sprint] {
	return docstore.Collection[*model.Sprint]{
		Name: "sprints",
		Indexes: []docstore.Index[*model.Sprint]{
			{Name: idxByProject, Keys: func(s *model.Sprint) [][]string {
				return [][]string{{s.ProjectID, s.ID}}
			}},
		},
	}
}

func storyCollection() docstore.Collection[*model.UserStory] {
	return docstore.Collection[*model.UserStory]{
		Name: "user_stories",
		Indexes: []docstore.Index[*model.UserStory]{
			{Name: idxByProject, Keys: func(s *model.UserStory) [][]string {
				return [][]string{{s.ProjectID, s.ID}}
			}},
			// backlog stories carry no sprint and no entry here
			{Name: idxBySprint, Keys: func(s *model.UserStory) [][]string {
				if s.SprintID == "" {
					return nil
				}
				return [][]string{{s.SprintID, s.ID}}
			}},
		},
	}
}

func taskCollection() docstore.Collection[*model.Task] {
	return docstore.Collection[*model.Task]{
		Name: "tasks",
		Indexes: []docstore.Index[*model.Task]{
			{Name: idxByStory, Keys: func(t *model.Task) [][]string {
				return [][]string{{t.UserStoryID, t.ID}}
			}},
			{Name: idxByAssignee, Keys: func(t *model.Task) [][]string {
				if t.AssignedTo == "" {
					return nil
				}
				return [][]string{{t.AssignedTo, t.ID}}
			}},
		},
	}
}

func commentCollection() docstore.Collection[*model.Comment] {
	return docstore.Collection[*model.Comment]{
		Name: "comments",
		Indexes: []docstore.Index[*model.Comment]{
			{Name: idxByTask, Keys: func(c *model.Comment) [][]string {
				return [][]string{{c.TaskID, c.ID}}
			}},
			{Name: idxByAuthor, Keys: func(c *model.Comment) [][]string {
				return [][]string{{c.AuthorID, c.ID}}
			}},
		},
	}
}

func reportCollection() docstore.Collection[*model.Report] {
	return docstore.Collection[*model.Report]{
		Name: "reports",
		Indexes: []docstore.Index[*model.Report]{
			{Name: idxByProject, Keys: func(r *model.Report) [][]string {
				return [][]string{{r.ProjectID, r.ID}}
			}},
			{Name: idxByCreator, Keys: func(r *model.Report) [][]string {
				return [][]string{{r.CreatedBy, r.ID}}
			}},
		},
	}
}

func scheduleCollection() docstore.Collection[*model.ReportSchedule] {
	return docstore.Collection[*model.ReportSchedule]{
		Name: "report_schedules",
		Indexes: []docstore.Index[*model.ReportSchedule]{
			{Name: idxByProject, Keys: func(s *model.ReportSchedule) [][]string {
				return [][]string{{s.ProjectID, s.ID}}
			}},
			{Name: idxByReport, Keys: func(s *model.ReportSchedule) [][]string {
				return [][]string{{s.ReportID, s.ID}}
			}},
		},
	}
}
