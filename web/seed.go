package web

import "fmt"

// DemoPassword is the password of every seeded account.
const DemoPassword = "postbox"

// SeedDemo creates a few users who follow each other and have posts.
func SeedDemo(b *Backend) error {
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := b.Register(name, DemoPassword); err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
	}

	posts := []struct{ author, title, body string }{
		{"alice", "Hello postbox", "First post on the **dev server**."},
		{"alice", "Markdown works", "Lists:\n\n- one\n- two\n"},
		{"bob", "Bob was here", "Testing the home feed."},
		{"carol", "Quiet one", "Nobody follows me yet."},
	}
	for _, p := range posts {
		id, _, _ := b.Authenticate(p.author, DemoPassword)
		if _, err := b.CreatePost(id, p.title, p.body); err != nil {
			return fmt.Errorf("seeding post %q: %w", p.title, err)
		}
	}

	follows := [][2]string{{"alice", "bob"}, {"bob", "alice"}, {"carol", "alice"}}
	for _, f := range follows {
		id, _, _ := b.Authenticate(f[0], DemoPassword)
		if err := b.Follow(id, f[1]); err != nil {
			return fmt.Errorf("seeding follow %s -> %s: %w", f[0], f[1], err)
		}
	}
	return nil
}
