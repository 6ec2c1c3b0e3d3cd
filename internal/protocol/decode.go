package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

const schemaBase = "mem://mobileinput/schema/"

var payloadSchemas = map[Command]string{
	CmdCreate:              "create.json",
	CmdSetText:             "set_text.json",
	CmdSetRect:             "set_rect.json",
	CmdSetFocus:            "set_focus.json",
	CmdSetVisible:          "set_visible.json",
	CmdSetContentType:      "set_content_type.json",
	CmdSetTextColor:        "color.json",
	CmdSetPlaceholderColor: "color.json",
	CmdSetBackgroundColor:  "color.json",
	CmdSetReadOnly:         "set_read_only.json",
	CmdSetLanguage:         "set_language.json",
	CmdKeyDown:             "key_down.json",
}

type schemaSet struct {
	commands map[Command]*jsonschema.Schema
	init     *jsonschema.Schema
}

var loadSchemas = sync.OnceValues(func() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schema", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(schemaBase+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}

	set := &schemaSet{commands: make(map[Command]*jsonschema.Schema, len(payloadSchemas))}
	compiled := make(map[string]*jsonschema.Schema)
	for cmd, name := range payloadSchemas {
		s, ok := compiled[name]
		if !ok {
			s, err = compiler.Compile(schemaBase + name)
			if err != nil {
				return nil, fmt.Errorf("compile schema %s: %w", name, err)
			}
			compiled[name] = s
		}
		set.commands[cmd] = s
	}
	if set.init, err = compiler.Compile(schemaBase + "init.json"); err != nil {
		return nil, fmt.Errorf("compile schema init.json: %w", err)
	}
	return set, nil
})

// Envelope is a parsed inbound message. Command is CmdUnknown when the
// discriminator names no known command; Name always holds the raw value.
type Envelope struct {
	Command Command
	Name    string
	Raw     json.RawMessage
}

// ParseEnvelope parses the top-level JSON object and its msg discriminator.
func ParseEnvelope(data string) (*Envelope, error) {
	var head struct {
		Msg *string `json:"msg"`
	}
	raw := json.RawMessage(data)
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if head.Msg == nil {
		return nil, ErrMissingMsg
	}
	env := &Envelope{Name: *head.Msg, Raw: raw}
	if cmd, err := ParseCommand(env.Name); err == nil {
		env.Command = cmd
	}
	return env, nil
}

// Decode validates the envelope's payload against the command's schema and
// unmarshals it into v. Failures are returned as *PayloadError.
func (e *Envelope) Decode(v any) error {
	return DecodePayload(e.Command, e.Raw, v)
}

// DecodePayload validates raw against the schema registered for cmd and
// unmarshals it into v.
func DecodePayload(cmd Command, raw []byte, v any) error {
	schemas, err := loadSchemas()
	if err != nil {
		return &PayloadError{Command: cmd, Err: err}
	}
	if s, ok := schemas.commands[cmd]; ok {
		if err := validate(s, raw); err != nil {
			return &PayloadError{Command: cmd, Err: err}
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &PayloadError{Command: cmd, Err: err}
	}
	return nil
}

// DecodeInit parses the startup configuration.
func DecodeInit(data string) (*InitPayload, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	if err := validate(schemas.init, []byte(data)); err != nil {
		return nil, fmt.Errorf("init payload: %w", err)
	}
	var p InitPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("init payload: %w", err)
	}
	return &p, nil
}

func validate(s *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return errors.New(leafMessage(ve))
		}
		return err
	}
	return nil
}

// leafMessage returns the first innermost cause, which names the offending
// property instead of the schema location.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
}
