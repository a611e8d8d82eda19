package view

import (
	"context"

	"github.com/deemkeen/postbox/api"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/util"
)

const MsgPostDeleted = "Post was deleted."

// PostView is the read-only single post screen with its delete action.
type PostView struct {
	*Loader[*domain.Post]
	env     *Env
	deleter *request.Controller
}

func NewPostView(env *Env) *PostView {
	return &PostView{
		Loader: NewLoader(env.Loop, "post", env.Backend.GetPost,
			WithEmpty(func(p *domain.Post) bool { return p.IsEmpty() })),
		env:     env,
		deleter: request.NewController(env.Loop, "delete-post"),
	}
}

// IsOwner gates the edit and delete controls. The backend re-checks.
func (v *PostView) IsOwner() bool {
	s := v.env.session()
	post := v.GetState().Data
	return s.LoggedIn && !post.IsEmpty() && s.Username == post.Author.Username
}

// Delete asks confirm first and returns nil when it declines.
func (v *PostView) Delete(confirm func() bool) *request.Handle {
	if confirm != nil && !confirm() {
		return nil
	}
	id := v.GetState().Key
	session := v.env.session()
	log := util.NewLogger("view").WithField("view", "post").WithField("key", id)

	return request.Issue(v.deleter,
		func(ctx context.Context) (string, error) {
			return v.env.Backend.DeletePost(ctx, id, session.Token)
		},
		func(answer string) {
			if answer != api.DeleteSuccess {
				log.WithField("answer", answer).Warn("delete was not confirmed by the server")
				return
			}
			v.env.flash(MsgPostDeleted)
			v.env.navigate("/profile/" + session.Username)
		},
		nil,
	)
}

func (v *PostView) Unmount() {
	v.Loader.Unmount()
	v.deleter.Close()
}
