package view

import (
	"context"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/store"
	"github.com/deemkeen/postbox/util"
)

const MsgPostCreated = "Congrats, you created a new post."

// CreatePost is the new-post form. A successful save navigates to the new
// post.
type CreatePost struct {
	env   *Env
	ctrl  *request.Controller
	store *store.Store[FormState, FormAction]
	last  *request.Handle
}

func NewCreatePost(env *Env) *CreatePost {
	v := &CreatePost{
		env:  env,
		ctrl: request.NewController(env.Loop, "create-post"),
	}
	v.store = store.New[FormState, FormAction](newFormState(PostRules),
		func(prev FormState, a FormAction) FormState {
			return reduceForm(PostRules, prev, a)
		})
	v.store.Subscribe(onSubmitted(func(s FormState) uint { return s.SendCount }, v.save))
	return v
}

func (v *CreatePost) GetState() FormState {
	return v.store.GetState()
}

func (v *CreatePost) Subscribe(fn store.Listener[FormState]) func() {
	return v.store.Subscribe(fn)
}

func (v *CreatePost) Change(field string, value string) {
	v.store.Dispatch(FieldChange{Field: field, Value: value})
}

// Check validates one field, typically when it loses focus.
func (v *CreatePost) Check(field string) {
	v.store.Dispatch(FieldCheck{Field: field})
}

// Submit validates every field and returns the save handle, or nil when
// the submission was refused.
func (v *CreatePost) Submit() *request.Handle {
	v.last = nil
	for _, a := range submission(PostRules) {
		v.store.Dispatch(a)
	}
	return v.last
}

func (v *CreatePost) Unmount() {
	v.ctrl.Close()
}

func (v *CreatePost) save(s FormState) {
	log := util.NewLogger("view").WithField("view", "create-post")
	v.store.Dispatch(SaveRequestStarted{})

	post := domain.SavePost{
		Title: s.Value(FieldTitle),
		Body:  s.Value(FieldBody),
		Token: v.env.session().Token,
	}
	v.last = request.Issue(v.ctrl,
		func(ctx context.Context) (string, error) {
			return v.env.Backend.CreatePost(ctx, post)
		},
		func(id string) {
			v.store.Dispatch(SaveRequestFinished{})
			log.WithField("post_id", id).Info("post created")
			v.env.flash(MsgPostCreated)
			v.env.navigate("/post/" + id)
		},
		func(err error) {
			v.store.Dispatch(SaveRequestFinished{})
		},
	)
}
