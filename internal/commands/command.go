// Package commands parses the command palette grammar: slash-prefixed,
// whitespace-separated commands targeting items on the current tab.
package commands

import (
	"fmt"
	"strings"

	"github.com/jingm4128/mcadence/internal/model"
)

type Type string

const (
	TypeAdd       Type = "add"
	TypeDone      Type = "done"
	TypeStart     Type = "start"
	TypeStop      Type = "stop"
	TypeArchive   Type = "archive"
	TypeUnarchive Type = "unarchive"
	TypeDelete    Type = "delete"
	TypePurge     Type = "purge"
	TypeReset     Type = "reset"
	TypeAsk       Type = "ask"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
	Tab   model.Tab
}

// TargetArgs addresses an existing item by id or title prefix.
type TargetArgs struct {
	Target string
}

type AskArgs struct {
	Text string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Ask    *AskArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeStart, TypeStop, TypeArchive, TypeUnarchive, TypeDelete, TypePurge:
		return parseTarget(Type(head), input, args)
	case TypeReset:
		return Command{Type: TypeReset, Raw: input}, nil
	case TypeAsk:
		return parseAsk(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	tab := model.Tab("")
	rest := args
	if len(args) > 0 && model.Tab(args[0]).IsValid() {
		tab = model.Tab(args[0])
		rest = args[1:]
	}
	title := strings.TrimSpace(strings.Join(rest, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title, Tab: tab}}, nil
}

func parseTarget(t Type, raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a target", t)}
	}
	return Command{Type: t, Raw: raw, Target: &TargetArgs{Target: strings.Join(args, " ")}}, nil
}

func parseAsk(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "ask requires text to parse"}
	}
	return Command{Type: TypeAsk, Raw: raw, Ask: &AskArgs{Text: strings.Join(args, " ")}}, nil
}
