package view

import (
	"context"

	"github.com/deemkeen/postbox/api"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/store"
	"github.com/deemkeen/postbox/util"
	"github.com/sirupsen/logrus"
)

const (
	MsgPostUpdated  = "Post updated."
	MsgNoPermission = "You do not have permission to edit that post."
)

// EditState is the editor snapshot. NotFound is terminal.
type EditState struct {
	FormState
	IsFetching bool
	NotFound   bool
}

type EditAction interface {
	isEditAction()
}

type FetchComplete struct {
	Title string
	Body  string
}

type PostNotFound struct{}

func (FetchComplete) isEditAction()       {}
func (PostNotFound) isEditAction()        {}
func (FieldChange) isEditAction()         {}
func (FieldCheck) isEditAction()          {}
func (SubmitRequest) isEditAction()       {}
func (SaveRequestStarted) isEditAction()  {}
func (SaveRequestFinished) isEditAction() {}

func reduceEdit(prev EditState, action EditAction) EditState {
	if prev.NotFound {
		return prev
	}
	next := prev
	switch a := action.(type) {
	case FetchComplete:
		next.Fields = withField(prev.Fields, FieldTitle, FieldState{Value: a.Title})
		next.Fields = withField(next.Fields, FieldBody, FieldState{Value: a.Body})
		next.IsFetching = false
	case PostNotFound:
		next.NotFound = true
		next.IsFetching = false
	case SubmitRequest:
		if prev.IsFetching {
			return prev
		}
		next.FormState = reduceForm(PostRules, prev.FormState, a)
	case FormAction:
		next.FormState = reduceForm(PostRules, prev.FormState, a)
	}
	return next
}

// EditPost is the editor for one post id. Mount a new one when the id
// changes.
type EditPost struct {
	env   *Env
	id    string
	fetch *request.Controller
	save  *request.Controller
	store *store.Store[EditState, EditAction]
	log   *logrus.Entry
	last  *request.Handle
}

func NewEditPost(env *Env, id string) *EditPost {
	v := &EditPost{
		env:   env,
		id:    id,
		fetch: request.NewController(env.Loop, "edit-post-fetch["+id+"]"),
		save:  request.NewController(env.Loop, "edit-post-save["+id+"]"),
		log:   util.NewLogger("view").WithFields(logrus.Fields{"view": "edit-post", "key": id}),
	}
	v.store = store.New[EditState, EditAction](
		EditState{FormState: newFormState(PostRules), IsFetching: true},
		reduceEdit,
	)
	v.store.Subscribe(onSubmitted(func(s EditState) uint { return s.SendCount }, v.issueSave))
	return v
}

func (v *EditPost) ID() string {
	return v.id
}

func (v *EditPost) GetState() EditState {
	return v.store.GetState()
}

func (v *EditPost) Subscribe(fn store.Listener[EditState]) func() {
	return v.store.Subscribe(fn)
}

// Load fetches the post. An author other than the session user sends the
// visitor home.
func (v *EditPost) Load() *request.Handle {
	return request.Issue(v.fetch,
		func(ctx context.Context) (*domain.Post, error) {
			return v.env.Backend.GetPost(ctx, v.id)
		},
		func(post *domain.Post) {
			if post.IsEmpty() {
				v.store.Dispatch(PostNotFound{})
				return
			}
			v.store.Dispatch(FetchComplete{Title: post.Title, Body: post.Body})
			if v.env.session().Username != post.Author.Username {
				v.denied()
			}
		},
		func(err error) {
			if api.Classify(err) == api.KindNotFound {
				v.store.Dispatch(PostNotFound{})
			}
		},
	)
}

func (v *EditPost) Change(field string, value string) {
	v.store.Dispatch(FieldChange{Field: field, Value: value})
}

func (v *EditPost) Check(field string) {
	v.store.Dispatch(FieldCheck{Field: field})
}

// Submit validates every field and returns the save handle, or nil when
// nothing was sent.
func (v *EditPost) Submit() *request.Handle {
	v.last = nil
	for _, a := range submission(PostRules) {
		v.store.Dispatch(a.(EditAction))
	}
	return v.last
}

func (v *EditPost) Unmount() {
	v.fetch.Close()
	v.save.Close()
}

func (v *EditPost) issueSave(s EditState) {
	v.store.Dispatch(SaveRequestStarted{})

	edit := domain.SavePost{
		Title: s.Value(FieldTitle),
		Body:  s.Value(FieldBody),
		Token: v.env.session().Token,
	}
	v.last = request.Issue(v.save,
		func(ctx context.Context) (*domain.Post, error) {
			return v.env.Backend.EditPost(ctx, v.id, edit)
		},
		func(*domain.Post) {
			v.store.Dispatch(SaveRequestFinished{})
			v.env.flash(MsgPostUpdated)
		},
		func(err error) {
			v.store.Dispatch(SaveRequestFinished{})
			if api.Classify(err) == api.KindForbidden {
				v.denied()
			}
		},
	)
}

func (v *EditPost) denied() {
	v.log.WithField("user", v.env.session().Username).Info("edit refused, not the author")
	v.env.flash(MsgNoPermission)
	v.env.navigate("/")
}
