package chatcontroller

import (
	"context"
	"strings"
)

// helpText lists the recognized slash commands. Kept as a single constant
// rather than generated from the dispatch table so the text stays readable
// and stable across reordering.
const helpText = `Commands:
  /clear            clear the conversation and context store
  /new              start a fresh conversation (alias of /clear)
  /model [name]     show or switch the active model
  /stats            show conversation and context-store size
  /settings         not yet available in this build
  /sessions         not yet available in this build
  /switch <name>    not yet available in this build
  /cap <name>       not yet available in this build
  /plans            not yet available in this build
  /help             show this message

Lines starting with > run as a shell command directly, bypassing the model.
Type exit or quit to leave.`

// runSlashCommand dispatches a line beginning with "/" to its handler. An
// unrecognized command echoes a usage hint rather than silently doing
// nothing, so a typo doesn't look like a no-op turn.
func (c *Controller) runSlashCommand(ctx context.Context, line string) Output {
	name, rest := splitCommand(line)

	switch name {
	case "/clear", "/new":
		c.Conversation.Clear()
		if c.Store != nil {
			c.Store.Clear()
		}
		return Output{Kind: KindCommandReply, Text: "conversation cleared"}

	case "/help":
		return Output{Kind: KindCommandReply, Text: helpText}

	case "/model":
		if rest == "" {
			return Output{Kind: KindCommandReply, Text: "current model: " + c.Model}
		}
		c.Model = rest
		return Output{Kind: KindCommandReply, Text: "model set to " + c.Model}

	case "/stats":
		return Output{Kind: KindCommandReply, Text: c.statsText()}

	case "/settings", "/sessions", "/cap", "/plans", "/switch":
		return Output{Kind: KindCommandReply, Text: name + " is not yet available in this build"}

	default:
		return Output{Kind: KindCommandReply, Text: "unknown command: " + name + " (try /help)"}
	}
}

// splitCommand splits "/model gpt-4o" into ("/model", "gpt-4o").
func splitCommand(line string) (name, rest string) {
	fields := strings.SplitN(line, " ", 2)
	name = fields[0]
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}
	return name, rest
}
