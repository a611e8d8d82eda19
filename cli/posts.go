package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deemkeen/postbox/app"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/ui/common"
	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/view"
	"github.com/spf13/cobra"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind string, id string) error {
	return notFoundError{kind: kind, id: id}
}

var errUnavailable = errors.New("the backend did not answer, see the log for details")

func newPostCmd(c *Cli) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "post <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			_, post, err := loadPost(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, post.Title)
			fmt.Fprintf(out, "by @%s on %s\n\n", post.Author.Username, util.PostDateFormat(post.CreatedDate))
			if raw || !isTerminal(os.Stdout) {
				fmt.Fprintln(out, post.Body)
				return nil
			}
			common.ApplyColorProfile(c.conf.Conf.NoColor)
			fmt.Fprintln(out, common.RenderMarkdown(post.Body, 80))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the body as plain markdown")
	return cmd
}

func loadPost(ctx context.Context, a *app.App, id string) (*view.PostView, *domain.Post, error) {
	v := view.NewPostView(a.Env)
	if err := run(ctx, a, func() *request.Handle { return v.SetKey(id) }); err != nil {
		return nil, nil, err
	}
	s := v.GetState()
	switch {
	case s.NotFound:
		return nil, nil, errNotFound("post", id)
	case s.IsLoading:
		return nil, nil, errUnavailable
	}
	return v, s.Data, nil
}

// postInput reads --title and --body; a body of "-" is read from stdin.
type postInput struct {
	title string
	body  string
}

func (p *postInput) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.title, "title", "t", "", "Post title")
	cmd.Flags().StringVarP(&p.body, "body", "b", "", "Post body in markdown, - reads stdin")
}

func (p *postInput) resolve(cmd *cobra.Command) error {
	if p.body != "-" {
		return nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading body from stdin: %w", err)
	}
	p.body = string(data)
	return nil
}

// formErrors joins the messages of all invalid fields.
func formErrors(f view.FormState) error {
	var msgs []string
	for _, field := range []string{view.FieldTitle, view.FieldBody} {
		if fs := f.Fields[field]; fs.IsInvalid {
			msgs = append(msgs, fs.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, " "))
}

func newCreateCmd(c *Cli) *cobra.Command {
	var in postInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := in.resolve(cmd); err != nil {
				return err
			}
			a, nav, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			if !snapshot(a).Session.LoggedIn {
				return errNotLoggedIn
			}

			v := view.NewCreatePost(a.Env)
			defer a.Do(v.Unmount)
			if err := run(cmd.Context(), a, func() *request.Handle {
				v.Change(view.FieldTitle, in.title)
				v.Change(view.FieldBody, in.body)
				return v.Submit()
			}); err != nil {
				return err
			}

			if err := formErrors(v.GetState()); err != nil {
				return err
			}
			if lastFlash(snapshot(a)) != view.MsgPostCreated {
				return errUnavailable
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.MsgPostCreated)
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimPrefix(nav.Last(), "/post/"))
			return nil
		},
	}
	in.bind(cmd)
	return cmd
}

func newEditCmd(c *Cli) *cobra.Command {
	var in postInput

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or body of one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := in.resolve(cmd); err != nil {
				return err
			}
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			v := view.NewEditPost(a.Env, args[0])
			defer a.Do(v.Unmount)
			if err := run(cmd.Context(), a, v.Load); err != nil {
				return err
			}

			s := v.GetState()
			switch {
			case s.NotFound:
				return errNotFound("post", args[0])
			case s.IsFetching:
				return errUnavailable
			case lastFlash(snapshot(a)) == view.MsgNoPermission:
				return errors.New(view.MsgNoPermission)
			}

			title := cmd.Flags().Changed("title")
			body := cmd.Flags().Changed("body")
			if !title && !body {
				return errors.New("nothing to change, pass --title or --body")
			}
			if err := run(cmd.Context(), a, func() *request.Handle {
				if title {
					v.Change(view.FieldTitle, in.title)
				}
				if body {
					v.Change(view.FieldBody, in.body)
				}
				return v.Submit()
			}); err != nil {
				return err
			}

			if err := formErrors(v.GetState().FormState); err != nil {
				return err
			}
			switch msg := lastFlash(snapshot(a)); msg {
			case view.MsgPostUpdated:
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			case view.MsgNoPermission:
				return errors.New(msg)
			}
			return errUnavailable
		},
	}
	in.bind(cmd)
	return cmd
}

func newDeleteCmd(c *Cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, nav, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			v, post, err := loadPost(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			defer a.Do(v.Unmount)

			var owner bool
			a.Do(func() { owner = v.IsOwner() })
			if !owner {
				return errors.New("you can only delete your own posts")
			}

			// asked up front: the confirm hook runs on the loop and must not
			// wait for a terminal
			confirmed := yes
			if !confirmed {
				if f, ok := cmd.InOrStdin().(*os.File); !ok || !isTerminal(f) {
					return errors.New("refusing to delete without --yes")
				}
				confirmed = ask(cmd, fmt.Sprintf("Do you really want to delete %q? [y/N] ", post.Title))
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "kept")
				return nil
			}

			if err := run(cmd.Context(), a, func() *request.Handle {
				return v.Delete(func() bool { return true })
			}); err != nil {
				return err
			}
			if !strings.HasPrefix(nav.Last(), "/profile/") {
				return errors.New("the post was not deleted, see the log for details")
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.MsgPostDeleted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func ask(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
