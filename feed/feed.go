// Package feed exports a user's posts as a syndication feed.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/util"
	"github.com/gorilla/feeds"
)

type Format string

const (
	RSS  Format = "rss"
	Atom Format = "atom"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case RSS, Atom, JSON:
		return f, nil
	case "":
		return RSS, nil
	default:
		return "", fmt.Errorf("unknown feed format %q", s)
	}
}

// Build turns a profile's posts into a feed. link is the public base url
// that post links are resolved against.
func Build(link string, username string, posts []domain.Post) *feeds.Feed {
	link = strings.TrimRight(link, "/")
	email := fmt.Sprintf("%s@postbox", username)

	f := &feeds.Feed{
		Title:       fmt.Sprintf("Postbox - %s", username),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/profile/%s", link, username)},
		Description: fmt.Sprintf("Posts by %s", username),
		Author:      &feeds.Author{Name: username, Email: email},
		Created:     time.Now(),
	}

	for _, post := range posts {
		author := post.Author.Username
		if author == "" {
			author = username
		}
		f.Items = append(f.Items, &feeds.Item{
			Id:          post.Id,
			Title:       post.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/post/%s", link, post.Id)},
			Description: util.Truncate(post.Body, 140),
			Content:     post.Body,
			Author:      &feeds.Author{Name: author, Email: fmt.Sprintf("%s@postbox", author)},
			Created:     post.CreatedDate,
		})
		if post.CreatedDate.After(f.Updated) {
			f.Updated = post.CreatedDate
		}
	}
	return f
}

func Render(link string, username string, posts []domain.Post, format Format) (string, error) {
	f := Build(link, username, posts)
	switch format {
	case Atom:
		return f.ToAtom()
	case JSON:
		return f.ToJSON()
	default:
		return f.ToRss()
	}
}
