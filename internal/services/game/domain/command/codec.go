package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeRequired indicates a missing command type.
	ErrTypeRequired = errors.New("command type is required")
	// ErrTypeUnknown indicates an unregistered command type.
	ErrTypeUnknown = errors.New("command type is not registered")
	// ErrCampaignIDRequired indicates a missing campaign id.
	ErrCampaignIDRequired = errors.New("campaign id is required")
	// ErrPayloadInvalid indicates malformed command JSON.
	ErrPayloadInvalid = errors.New("command json must be valid")
)

type decoder func([]byte) (Command, error)

func strict[T Command](data []byte) (Command, error) {
	var cmd T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrPayloadInvalid)
	}
	return cmd, nil
}

var decoders = map[Type]decoder{
	TypeCreateCampaign:    strict[CreateCampaign],
	TypeJoinCampaign:      strict[JoinCampaign],
	TypeAdvancePhase:      strict[AdvancePhase],
	TypeGatherMaterials:   strict[GatherMaterials],
	TypeAcquireOffice:     strict[AcquireOffice],
	TypeFoundOrganization: strict[FoundOrganization],
	TypeQueueConversion:   strict[QueueConversion],
	TypeAddPrivateNote:    strict[AddPrivateNote],
}

// Decode parses a command object of the form {"type": ..., "campaignId": ..., ...}.
func Decode(data []byte) (Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: command must be an object", ErrPayloadInvalid)
	}

	rawType, ok := fields["type"]
	if !ok {
		return nil, ErrTypeRequired
	}
	var cmdType Type
	if err := json.Unmarshal(rawType, &cmdType); err != nil {
		return nil, fmt.Errorf("%w: type must be a string", ErrPayloadInvalid)
	}
	cmdType = Type(strings.TrimSpace(string(cmdType)))
	if cmdType == "" {
		return nil, ErrTypeRequired
	}
	decode, ok := decoders[cmdType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeUnknown, cmdType)
	}

	delete(fields, "type")
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	cmd, err := decode(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.Campaign()) == "" {
		return nil, ErrCampaignIDRequired
	}
	return cmd, nil
}

// Encode renders a command in the form Decode accepts.
func Encode(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, errors.New("command is required")
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.CommandType(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.CommandType(), err)
	}
	typeJSON, err := json.Marshal(cmd.CommandType())
	if err != nil {
		return nil, err
	}
	fields["type"] = typeJSON
	return json.Marshal(fields)
}
