package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/deemkeen/postbox/app"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/feed"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/view"
	"github.com/spf13/cobra"
)

// fetch binds a loader to key and waits for its answer.
func fetch[T any](ctx context.Context, a *app.App, l *view.Loader[T], key string) (view.LoaderState[T], error) {
	if err := run(ctx, a, func() *request.Handle { return l.SetKey(key) }); err != nil {
		return view.LoaderState[T]{}, err
	}
	s := l.GetState()
	if s.IsLoading {
		return s, errUnavailable
	}
	return s, nil
}

func printPosts(w io.Writer, posts []domain.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "no posts")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  %-10s  @%s  %s\n", p.Id, util.PostDateFormat(p.CreatedDate), p.Author.Username, util.Truncate(p.Title, 60))
	}
}

func printUsers(w io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "nobody")
		return
	}
	for _, u := range users {
		fmt.Fprintf(w, "@%s\n", u.Username)
	}
}

func parseTab(s string) (view.Tab, error) {
	for _, tab := range []view.Tab{view.TabPosts, view.TabFollowers, view.TabFollowing} {
		if strings.EqualFold(s, tab.String()) {
			return tab, nil
		}
	}
	return view.TabPosts, fmt.Errorf("unknown tab %q, want posts, followers or following", s)
}

func newProfileCmd(c *Cli) *cobra.Command {
	var tabName string

	cmd := &cobra.Command{
		Use:   "profile <username>",
		Short: "Show a profile and one of its lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			tab, err := parseTab(tabName)
			if err != nil {
				return err
			}
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			ctx := cmd.Context()
			username := args[0]
			page := view.NewProfilePage(a.Env)
			defer a.Do(page.Unmount)

			summary, err := fetch(ctx, a, page.Summary, username)
			if err != nil {
				return err
			}
			if summary.NotFound {
				return errNotFound("user", username)
			}

			out := cmd.OutOrStdout()
			p := summary.Data
			fmt.Fprintf(out, "@%s", p.ProfileUsername)
			if p.IsFollowing {
				fmt.Fprint(out, " (following)")
			}
			fmt.Fprintf(out, "\nposts: %d  followers: %d  following: %d\n\n",
				p.Counts.PostCount, p.Counts.FollowerCount, p.Counts.FollowingCount)

			switch tab {
			case view.TabFollowers:
				s, err := fetch(ctx, a, page.Followers, username)
				if err != nil {
					return err
				}
				printUsers(out, s.Data)
			case view.TabFollowing:
				s, err := fetch(ctx, a, page.Following, username)
				if err != nil {
					return err
				}
				printUsers(out, s.Data)
			default:
				s, err := fetch(ctx, a, page.Posts, username)
				if err != nil {
					return err
				}
				printPosts(out, s.Data)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tabName, "tab", view.TabPosts.String(), "Which list to show: posts, followers or following")
	return cmd
}

func newHomeCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show posts from the people you follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			session := snapshot(a).Session
			if !session.LoggedIn {
				return errNotLoggedIn
			}
			home := view.NewHomeFeed(a.Env)
			defer a.Do(home.Unmount)

			s, err := fetch(cmd.Context(), a, home, session.Username)
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), s.Data)
			return nil
		},
	}
}

func newSearchCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			search := view.NewSearch(a.Env)
			defer a.Do(search.Unmount)

			s, err := fetch(cmd.Context(), a, search, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), s.Data)
			return nil
		},
	}
}

func newFeedCmd(c *Cli) *cobra.Command {
	var format, link string

	cmd := &cobra.Command{
		Use:   "feed <username>",
		Short: "Export a user's posts as RSS, Atom or JSON Feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, err := feed.ParseFormat(format)
			if err != nil {
				return err
			}
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			username := args[0]
			posts := view.NewProfilePosts(a.Env)
			defer a.Do(posts.Unmount)

			s, err := fetch(cmd.Context(), a, posts, username)
			if err != nil {
				return err
			}
			if link == "" {
				link = c.conf.Conf.ApiUrl
			}
			out, err := feed.Render(link, username, s.Data, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "rss", "Feed format: rss, atom or json")
	cmd.Flags().StringVar(&link, "link", "", "Site link used for item URLs (default apiUrl)")
	return cmd
}
