package services

import (
	"context"
	"fmt"

	"github.com/BugaPunk/WorkflowS-sub001/internal/events"
	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// BacklogService handles sprints, stories, tasks and comments. Deleting a
// sprint releases its stories back to the backlog; deleting a story or task
// sweeps everything beneath it.
type BacklogService struct {
	store store.Store
	bus   *events.Bus
}

func NewBacklogService(s store.Store) *BacklogService { return &BacklogService{store: s} }

// NewBacklogServiceWithEvents additionally publishes board events so live
// views can refresh without polling. Publishing is best effort; a full bus
// drops events rather than blocking writes.
func NewBacklogServiceWithEvents(s store.Store, bus *events.Bus) *BacklogService {
	return &BacklogService{store: s, bus: bus}
}

func (s *BacklogService) publish(kind events.EventKind, projectID, docID string) {
	if s.bus != nil {
		_ = s.bus.Publish(events.Event{Kind: kind, ProjectID: projectID, DocID: docID})
	}
}

func (s *BacklogService) CreateSprint(ctx context.Context, sp *model.Sprint) (*model.Sprint, error) {
	if _, err := s.store.Projects().GetByID(ctx, sp.ProjectID); err != nil {
		return nil, err
	}
	return s.store.Sprints().Create(ctx, sp)
}

func (s *BacklogService) GetSprint(ctx context.Context, sprintID string) (*model.Sprint, error) {
	return s.store.Sprints().GetByID(ctx, sprintID)
}

func (s *BacklogService) ListSprints(ctx context.Context, projectID string, opts store.ListOptions) ([]*model.Sprint, string, error) {
	return s.store.Sprints().ListByProject(ctx, projectID, opts)
}

func (s *BacklogService) UpdateSprint(ctx context.Context, sprintID string, mutate func(*model.Sprint) error) (*model.Sprint, error) {
	return s.store.Sprints().Update(ctx, sprintID, mutate)
}

// DeleteSprint releases the sprint's stories back to the backlog before
// removing the sprint. Stories and their tasks survive.
func (s *BacklogService) DeleteSprint(ctx context.Context, sprintID string) error {
	if _, err := s.store.Sprints().GetByID(ctx, sprintID); err != nil {
		return err
	}
	err := drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.UserStory, string, error) {
		return s.store.Stories().ListBySprint(ctx, sprintID, opts)
	}, func(st *model.UserStory) error {
		_, err := s.store.Stories().Update(ctx, st.ID, func(us *model.UserStory) error {
			us.SprintID = ""
			us.Status = model.StoryBacklog
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return s.store.Sprints().Delete(ctx, sprintID)
}

func (s *BacklogService) CreateStory(ctx context.Context, st *model.UserStory) (*model.UserStory, error) {
	if _, err := s.store.Projects().GetByID(ctx, st.ProjectID); err != nil {
		return nil, err
	}
	created, err := s.store.Stories().Create(ctx, st)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventStoryCreated, created.ProjectID, created.ID)
	return created, nil
}

func (s *BacklogService) GetStory(ctx context.Context, storyID string) (*model.UserStory, error) {
	return s.store.Stories().GetByID(ctx, storyID)
}

func (s *BacklogService) ListStoriesByProject(ctx context.Context, projectID string, opts store.ListOptions) ([]*model.UserStory, string, error) {
	return s.store.Stories().ListByProject(ctx, projectID, opts)
}

func (s *BacklogService) ListStoriesBySprint(ctx context.Context, sprintID string, opts store.ListOptions) ([]*model.UserStory, string, error) {
	return s.store.Stories().ListBySprint(ctx, sprintID, opts)
}

// AssignStoryToSprint moves a story into a sprint of the same project.
func (s *BacklogService) AssignStoryToSprint(ctx context.Context, storyID, sprintID string) (*model.UserStory, error) {
	sp, err := s.store.Sprints().GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	moved, err := s.store.Stories().Update(ctx, storyID, func(us *model.UserStory) error {
		if us.ProjectID != sp.ProjectID {
			return fmt.Errorf("sprint %s belongs to project %s, story to %s", sprintID, sp.ProjectID, us.ProjectID)
		}
		us.SprintID = sprintID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.EventStoryMoved, moved.ProjectID, moved.ID)
	return moved, nil
}

func (s *BacklogService) UpdateStory(ctx context.Context, storyID string, mutate func(*model.UserStory) error) (*model.UserStory, error) {
	return s.store.Stories().Update(ctx, storyID, mutate)
}

func (s *BacklogService) DeleteStory(ctx context.Context, storyID string) error {
	st, err := s.store.Stories().GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if err := deleteStoryCascade(ctx, s.store, storyID); err != nil {
		return err
	}
	s.publish(events.EventStoryDeleted, st.ProjectID, st.ID)
	return nil
}

func (s *BacklogService) CreateTask(ctx context.Context, t *model.Task) (*model.Task, error) {
	st, err := s.store.Stories().GetByID(ctx, t.UserStoryID)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Tasks().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventTaskCreated, st.ProjectID, created.ID)
	return created, nil
}

func (s *BacklogService) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	return s.store.Tasks().GetByID(ctx, taskID)
}

func (s *BacklogService) ListTasksByStory(ctx context.Context, storyID string, opts store.ListOptions) ([]*model.Task, string, error) {
	return s.store.Tasks().ListByStory(ctx, storyID, opts)
}

func (s *BacklogService) ListTasksByAssignee(ctx context.Context, userID string, opts store.ListOptions) ([]*model.Task, string, error) {
	return s.store.Tasks().ListByAssignee(ctx, userID, opts)
}

// AssignTask points a task at a user, or clears the assignment when userID
// is empty.
func (s *BacklogService) AssignTask(ctx context.Context, taskID, userID string) (*model.Task, error) {
	if userID != "" {
		if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
			return nil, err
		}
	}
	assigned, err := s.store.Tasks().Update(ctx, taskID, func(t *model.Task) error {
		t.AssignedTo = userID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.EventTaskAssigned, s.projectOfTask(ctx, assigned), assigned.ID)
	return assigned, nil
}

// projectOfTask resolves the owning project via the task's story; returns
// empty when the story is gone mid-cascade.
func (s *BacklogService) projectOfTask(ctx context.Context, t *model.Task) string {
	if s.bus == nil {
		return ""
	}
	st, err := s.store.Stories().GetByID(ctx, t.UserStoryID)
	if err != nil {
		return ""
	}
	return st.ProjectID
}

func (s *BacklogService) UpdateTask(ctx context.Context, taskID string, mutate func(*model.Task) error) (*model.Task, error) {
	return s.store.Tasks().Update(ctx, taskID, mutate)
}

func (s *BacklogService) DeleteTask(ctx context.Context, taskID string) error {
	t, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	projectID := s.projectOfTask(ctx, t)
	if err := deleteTaskCascade(ctx, s.store, taskID); err != nil {
		return err
	}
	s.publish(events.EventTaskDeleted, projectID, t.ID)
	return nil
}

func (s *BacklogService) AddComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	task, err := s.store.Tasks().GetByID(ctx, c.TaskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, c.AuthorID); err != nil {
		return nil, err
	}
	created, err := s.store.Comments().Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventCommentAdded, s.projectOfTask(ctx, task), created.ID)
	return created, nil
}

func (s *BacklogService) ListComments(ctx context.Context, taskID string, opts store.ListOptions) ([]*model.Comment, string, error) {
	return s.store.Comments().ListByTask(ctx, taskID, opts)
}

func (s *BacklogService) DeleteComment(ctx context.Context, commentID string) error {
	return s.store.Comments().Delete(ctx, commentID)
}
