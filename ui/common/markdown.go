package common

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/deemkeen/postbox/util"
)

var (
	mdMu sync.Mutex
	// keyed by style and wrap width; building a renderer is not cheap
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func markdownStyle() string {
	if noColor {
		return "notty"
	}
	return "dark"
}

// RenderMarkdown renders a post body. On any renderer error the raw text
// is returned.
func RenderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	style := markdownStyle()
	key := fmt.Sprintf("%s:%d", style, width)

	mdMu.Lock()
	r, ok := mdRenderers[key]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdMu.Unlock()
			util.NewLogger("ui").WithError(err).Warn("markdown renderer unavailable")
			return md
		}
		mdRenderers[key] = r
	}
	mdMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
