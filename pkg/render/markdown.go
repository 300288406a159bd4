// Package render turns store snapshots into markdown views and converts
// them to HTML.
package render

import (
	"fmt"
	"strings"

	"github.com/withgalaxy/quasar/pkg/followers"
	"github.com/withgalaxy/quasar/pkg/todo"
)

func Header(title string) string {
	return fmt.Sprintf("# %s\n\n### Sub header\n", title)
}

func Counter(count int) string {
	return fmt.Sprintf("Count: **%d**\n", count)
}

// TodoList renders tasks as a GFM task list followed by the footer line.
func TodoList(tasks []todo.Task) string {
	var sb strings.Builder
	incomplete := 0
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		} else {
			incomplete++
		}
		fmt.Fprintf(&sb, "- [%s] %s\n", mark, escape(t.Text))
	}
	if len(tasks) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(todo.FooterText(incomplete))
	sb.WriteString("\n")
	return sb.String()
}

func Followers(state followers.State) string {
	switch state.Status {
	case followers.StatusIdle:
		return ""
	case followers.StatusLoading:
		return "_Loading followers..._\n"
	case followers.StatusFailed:
		msg := "unknown error"
		if state.Err != nil {
			msg = state.Err.Error()
		}
		return fmt.Sprintf("**Error:** %s\n", escape(msg))
	}

	if len(state.Followers) == 0 {
		return "_No followers._\n"
	}

	var sb strings.Builder
	for _, f := range state.Followers {
		fmt.Fprintf(&sb, "- ![%s](<%s>) **%s** @%s\n",
			escape(f.DisplayName), destEscaper.Replace(f.AvatarURL), escape(f.DisplayName), escape(f.Username))
	}
	return sb.String()
}

// escaper keeps inline text inline: markdown punctuation is escaped and
// line breaks become spaces so a value never splits its list item.
var escaper = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
	"<", `\<`,
)

// destEscaper makes a URL safe inside a <...> link destination, which
// allows spaces and parentheses but not angle brackets or line breaks.
var destEscaper = strings.NewReplacer(
	`\`, `\\`,
	"<", `\<`,
	">", `\>`,
	"\n", "%0A",
	"\r", "%0D",
)

func escape(s string) string {
	return escaper.Replace(s)
}
