// Package protocol defines the message vocabulary exchanged between the host
// engine and the plugin.
//
// Inbound messages are JSON objects with a "msg" discriminator, addressed to
// a widget id supplied next to the JSON string. Outbound messages are JSON
// objects wrapped by the bridge into {"data": "<json>"} or
// {"error": {"code", "message"}} envelopes.
package protocol

import (
	"errors"
	"fmt"
)

// Command identifies an inbound message. The set is closed: every value
// below commandCount has a wire name and a handler in the widget.
type Command uint8

const (
	CmdUnknown Command = iota
	CmdCreate
	CmdRemove
	CmdSetText
	CmdSetRect
	CmdSetFocus
	CmdSetVisible
	CmdSetContentType
	CmdSetTextColor
	CmdSetPlaceholderColor
	CmdSetBackgroundColor
	CmdSetReadOnly
	CmdSetLanguage
	CmdKeyDown

	commandCount
)

var commandNames = [commandCount]string{
	CmdUnknown:             "",
	CmdCreate:              "CREATE_EDIT",
	CmdRemove:              "REMOVE_EDIT",
	CmdSetText:             "SET_TEXT",
	CmdSetRect:             "SET_RECT",
	CmdSetFocus:            "SET_FOCUS",
	CmdSetVisible:          "SET_VISIBLE",
	CmdSetContentType:      "SET_CONTENT_TYPE",
	CmdSetTextColor:        "SET_TEXT_COLOR",
	CmdSetPlaceholderColor: "SET_PTEXT_COLOR",
	CmdSetBackgroundColor:  "SET_BG_COLOR",
	CmdSetReadOnly:         "SET_READ_ONLY",
	CmdSetLanguage:         "SET_LANGUAGE",
	CmdKeyDown:             "ANDROID_KEY_DOWN",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, commandCount)
	for c := CmdCreate; c < commandCount; c++ {
		m[commandNames[c]] = c
	}
	return m
}()

// String returns the wire name of the command.
func (c Command) String() string {
	if c < commandCount && c != CmdUnknown {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// ParseCommand maps a wire name to a Command.
func ParseCommand(name string) (Command, error) {
	if c, ok := commandsByName[name]; ok {
		return c, nil
	}
	return CmdUnknown, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Commands returns every known command in declaration order.
func Commands() []Command {
	out := make([]Command, 0, commandCount-1)
	for c := CmdCreate; c < commandCount; c++ {
		out = append(out, c)
	}
	return out
}

// ErrorCode is the code carried by an outbound error envelope.
type ErrorCode string

const (
	// ErrCodeReceive means the top-level payload could not be parsed.
	ErrCodeReceive ErrorCode = "RECEIVE_ERROR"
	// ErrCodeProcess means a command payload could not be parsed.
	ErrCodeProcess ErrorCode = "PROCESS_ERROR"
	// ErrCodeCreate means a CREATE_EDIT payload could not be parsed.
	ErrCodeCreate ErrorCode = "CREATE_ERROR"
)

var (
	ErrMissingMsg     = errors.New("no value for msg")
	ErrUnknownCommand = errors.New("unknown command")
)

// PayloadError reports a payload that failed validation or decoding.
type PayloadError struct {
	Command Command
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Code returns the error code the host expects for this failure.
func (e *PayloadError) Code() ErrorCode {
	if e.Command == CmdCreate {
		return ErrCodeCreate
	}
	return ErrCodeProcess
}
