package ui

import (
	"strconv"
	"strings"

	"github.com/portside/portside/internal/action"
)

// promptLabel is the placeholder text shown for a parameter prompt.
func promptLabel(act action.Action) string {
	switch act {
	case action.RenameContainer:
		return "new name"
	case action.CommitContainer:
		return "repository[:tag]"
	case action.CopyToContainer:
		return "source-path dest-path"
	case action.RunImage:
		return "container name (optional)"
	case action.PullImage:
		return "image reference"
	case action.BuildImage:
		return "context-dir tag"
	case action.SaveImage:
		return "archive path"
	case action.LoadImage:
		return "archive path"
	case action.CreateVolume:
		return "volume name"
	default:
		return ""
	}
}

// parsePromptInput maps one line of prompt text onto the action's parameters.
// Missing or malformed pieces are left empty; the dispatcher's validation
// rejects them through the normal error channel.
func parsePromptInput(act action.Action, text string) action.Params {
	text = strings.TrimSpace(text)

	switch act {
	case action.RenameContainer:
		return action.Params{Name: text}

	case action.CommitContainer:
		repo, tag := text, ""
		if idx := strings.LastIndex(text, ":"); idx > 0 {
			repo, tag = text[:idx], text[idx+1:]
		}
		return action.Params{Repo: repo, Tag: tag}

	case action.CopyToContainer:
		fields := strings.Fields(text)
		p := action.Params{}
		if len(fields) > 0 {
			p.Src = fields[0]
		}
		if len(fields) > 1 {
			p.Dest = fields[1]
		}
		return p

	case action.RunImage:
		return action.Params{Name: text}

	case action.PullImage:
		return action.Params{Ref: text}

	case action.BuildImage:
		fields := strings.Fields(text)
		p := action.Params{}
		if len(fields) > 0 {
			p.Dir = fields[0]
		}
		if len(fields) > 1 {
			p.Tag = fields[1]
		}
		return p

	case action.SaveImage, action.LoadImage:
		return action.Params{Path: text}

	case action.CreateVolume:
		return action.Params{Name: text}
	}

	return action.Params{}
}

// confirmLabel describes a pending destructive action for the confirm bar.
func confirmLabel(act action.Action, targets []string) string {
	var b strings.Builder
	b.WriteString(act.String())
	switch len(targets) {
	case 0:
	case 1:
		b.WriteString(" ")
		b.WriteString(shortID(targets[0]))
	default:
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(len(targets)))
		b.WriteString(" selected)")
	}
	b.WriteString("? [y/N]")
	return b.String()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
