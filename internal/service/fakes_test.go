package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"livepoll/internal/domain"
)

// In-memory repository fakes shared by the service tests

var errNotFound = errors.New("not found")

type fakePollRepo struct {
	mu       sync.Mutex
	nextID   int64
	polls    []*domain.Poll
	closeErr map[int64]error // injected MarkClosed failures per poll id
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{closeErr: make(map[int64]error)}
}

func (r *fakePollRepo) Create(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	poll.ID = r.nextID
	poll.CreatedAt = time.Now().UTC()
	r.polls = append(r.polls, poll)
	return nil
}

func (r *fakePollRepo) GetBySlug(_ context.Context, slug string) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.polls {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePollRepo) List(_ context.Context, ownerID int64, activeOnly bool) ([]*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Poll
	for _, p := range r.polls {
		if p.OwnerID != ownerID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePollRepo) Update(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.polls {
		if p.ID == poll.ID {
			p.Title = poll.Title
			p.ClosesAt = poll.ClosesAt
			p.ColorPalette = poll.ColorPalette
			p.SlideDuration = poll.SlideDuration
			p.EnableTitlePage = poll.EnableTitlePage
			return nil
		}
	}
	return errNotFound
}

func (r *fakePollRepo) MarkClosed(_ context.Context, id int64, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.closeErr[id]; err != nil {
		return err
	}
	for _, p := range r.polls {
		if p.ID == id {
			p.IsActive = false
			t := closedAt
			p.ClosedAt = &t
			return nil
		}
	}
	return errNotFound
}

func (r *fakePollRepo) MarkOpen(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.polls {
		if p.ID == id {
			p.IsActive = true
			p.ClosedAt = nil
			return nil
		}
	}
	return errNotFound
}

func (r *fakePollRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.polls {
		if p.ID == id {
			r.polls = append(r.polls[:i], r.polls[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (r *fakePollRepo) ListElapsed(_ context.Context, now time.Time) ([]*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Poll
	for _, p := range r.polls {
		if p.IsActive && p.ScheduleElapsed(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePollRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.polls {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	nextID    int64
	questions []*domain.Question
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	q.ID = r.nextID
	order := 0
	for _, existing := range r.questions {
		if existing.PollID == q.PollID && existing.Order >= order {
			order = existing.Order + 1
		}
	}
	q.Order = order
	for _, opt := range q.Options {
		r.nextID++
		opt.ID = r.nextID
		opt.QuestionID = q.ID
	}
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeQuestionRepo) Get(_ context.Context, pollID, questionID int64) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		if q.ID == questionID && q.PollID == pollID {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) Update(_ context.Context, q *domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.questions {
		if existing.ID == q.ID {
			for _, opt := range q.Options {
				r.nextID++
				opt.ID = r.nextID
				opt.QuestionID = q.ID
			}
			r.questions[i] = q
			return nil
		}
	}
	return errNotFound
}

func (r *fakeQuestionRepo) Delete(_ context.Context, pollID, questionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.questions {
		if q.ID == questionID && q.PollID == pollID {
			r.questions = append(r.questions[:i], r.questions[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (r *fakeQuestionRepo) Reorder(_ context.Context, pollID int64, orderedIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx, id := range orderedIDs {
		for _, q := range r.questions {
			if q.ID == id && q.PollID == pollID {
				q.Order = idx
			}
		}
	}
	return nil
}

type fakeVoteRepo struct {
	mu     sync.Mutex
	nextID int64
	votes  []*domain.Vote
	byPoll map[int64][]*domain.QuestionResults // canned results per poll
}

func (r *fakeVoteRepo) Create(_ context.Context, v *domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	v.CreatedAt = time.Now().UTC()
	r.votes = append(r.votes, v)
	return nil
}

func (r *fakeVoteRepo) ResultsForPoll(_ context.Context, pollID int64) ([]*domain.QuestionResults, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byPoll[pollID], nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  []*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// fakeNotifier records change notifications synchronously
type fakeNotifier struct {
	mu      sync.Mutex
	changes []change
}

type change struct {
	slug   string
	pollID int64
}

func (n *fakeNotifier) Changed(slug string, pollID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change{slug: slug, pollID: pollID})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

func (n *fakeNotifier) countFor(slug string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, c := range n.changes {
		if c.slug == slug {
			total++
		}
	}
	return total
}
