package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// In-memory stubs shared by the service tests. They mirror the behaviour of
// the Mongo repositories, including the precondition-in-the-write transition
// semantics.

var discardLogger = zerolog.Nop()

// --- user repository -------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.TaskIDs != nil {
		clone.TaskIDs = make([]string, len(u.TaskIDs))
		copy(clone.TaskIDs, u.TaskIDs)
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	clone := cloneUser(user)
	if clone.ID == "" {
		clone.ID = user.Username
	}
	r.users[clone.Username] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindAllByRole(_ context.Context, role string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) AddTaskRef(_ context.Context, username, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TaskIDs = append(u.TaskIDs, taskID)
	return nil
}

func (r *stubUserRepo) DeleteByUsername(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, username)
	return nil
}

// --- task repository -------------------------------------------------------

type stubTaskRepo struct {
	mu      sync.Mutex
	byTitle map[string]*domain.Task
	nextID  int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byTitle: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.Comments != nil {
		clone.Comments = make([]domain.Comment, len(t.Comments))
		copy(clone.Comments, t.Comments)
	}
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTitle[t.Title]; exists {
		return domain.ErrDuplicateTask
	}
	if t.ID == "" {
		r.nextID++
		t.ID = t.Title
	}
	r.byTitle[t.Title] = cloneTask(t)
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byTitle {
		if t.ID == id {
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTaskRepo) FindByTitle(_ context.Context, title string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byTitle[title]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) FindByAssignee(_ context.Context, username string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.byTitle {
		if t.Assignee == username {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

// TransitionStatus mirrors the Mongo conditional update: the precondition is
// checked under the same lock as the write, so one caller wins.
func (r *stubTaskRepo) TransitionStatus(
	_ context.Context,
	title string,
	allowedFrom []domain.TaskStatus,
	next domain.TaskStatus,
	comment *domain.Comment,
) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byTitle[title]
	if !ok {
		return nil, nil
	}
	matched := false
	for _, s := range allowedFrom {
		if t.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, nil
	}
	t.Status = next
	t.UpdatedAt = time.Now().UTC()
	if comment != nil {
		if comment.ID == "" {
			comment.ID = "c-" + title
		}
		t.Comments = append(t.Comments, *comment)
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) ApplyPatch(_ context.Context, title string, set map[string]any) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byTitle[title]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	for k, v := range set {
		switch k {
		case "description":
			t.Description = v.(string)
		case "status":
			t.Status = v.(domain.TaskStatus)
		case "importance":
			t.Importance = v.(domain.Importance)
		case "deadline":
			t.Deadline = v.(time.Time)
		}
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *stubTaskRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for title, t := range r.byTitle {
		if t.ID == id {
			delete(r.byTitle, title)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (r *stubTaskRepo) DeleteByAssignee(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for title, t := range r.byTitle {
		if t.Assignee == username {
			delete(r.byTitle, title)
		}
	}
	return nil
}

// --- comment repository ----------------------------------------------------

type stubCommentRepo struct {
	mu       sync.Mutex
	byTaskID map[string][]*domain.Comment
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{byTaskID: make(map[string][]*domain.Comment)}
}

func (r *stubCommentRepo) Save(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.byTaskID[c.TaskID] = append(r.byTaskID[c.TaskID], &clone)
	return nil
}

func (r *stubCommentRepo) DeleteByTaskID(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byTaskID, taskID)
	return nil
}

// --- transactor ------------------------------------------------------------

// stubTransactor runs fn directly; failure propagation is what the services
// rely on, not an actual rollback.
type stubTransactor struct {
	calls int
}

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// --- notifier --------------------------------------------------------------

type notification struct {
	audience ports.Audience
	message  string
}

// recordingNotifier captures published notifications for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(_ context.Context, audience ports.Audience, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{audience: audience, message: message})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

// --- dedup -----------------------------------------------------------------

type stubDedup struct {
	seen map[string]bool
	err  error
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, username, title string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.seen[username+"/"+title], nil
}

func (d *stubDedup) Mark(_ context.Context, username, title string) error {
	if d.err != nil {
		return d.err
	}
	d.seen[username+"/"+title] = true
	return nil
}
