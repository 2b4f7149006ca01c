package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownMessageType is returned when an envelope carries an unsupported type.
var ErrUnknownMessageType = errors.New("unknown message type")

type MessageType string

// Inbound (server -> client) message types.
const (
	MatchStartMessageType           MessageType = "matchStart"
	TransmitStateMessageType        MessageType = "transmitState"
	SignalErrorMessageType          MessageType = "signalError"
	OpponentDisconnectedMessageType MessageType = "opponentDisconnected"
	OpponentEmoteMessageType        MessageType = "opponentEmote"
)

// Outbound (client -> server) message types.
const (
	PlayCardMessageType  MessageType = "playCard"
	PassTurnMessageType  MessageType = "passTurn"
	MulliganMessageType  MessageType = "mulligan"
	EmoteMessageType     MessageType = "emote"
	ExitMatchMessageType MessageType = "exitMatch"
)

// Message is any protocol message.
type Message interface {
	MessageType() MessageType
}

// Envelope is the wire frame of every message.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound messages.
type (
	MatchStart struct {
		Name1 string `json:"name1"`
		Name2 string `json:"name2"`
		Elo1  int    `json:"elo1"`
		Elo2  int    `json:"elo2"`
	}

	TransmitState struct {
		State Snapshot `json:"state"`
	}

	// SignalError reports a rejected action.
	SignalError struct{}

	OpponentDisconnected struct{}

	OpponentEmote struct{}
)

// Outbound commands. Version-carrying commands let the server reject stale actions.
type (
	PlayCard struct {
		CardNum   int     `json:"cardNum"`
		VersionNo Version `json:"versionNo"`
	}

	PassTurn struct {
		VersionNo Version `json:"versionNo"`
	}

	Mulligan struct {
		Mulligan [3]bool `json:"mulligan"`
	}

	Emote struct{}

	ExitMatch struct{}
)

func (MatchStart) MessageType() MessageType           { return MatchStartMessageType }
func (TransmitState) MessageType() MessageType        { return TransmitStateMessageType }
func (SignalError) MessageType() MessageType          { return SignalErrorMessageType }
func (OpponentDisconnected) MessageType() MessageType { return OpponentDisconnectedMessageType }
func (OpponentEmote) MessageType() MessageType        { return OpponentEmoteMessageType }
func (PlayCard) MessageType() MessageType             { return PlayCardMessageType }
func (PassTurn) MessageType() MessageType             { return PassTurnMessageType }
func (Mulligan) MessageType() MessageType             { return MulliganMessageType }
func (Emote) MessageType() MessageType                { return EmoteMessageType }
func (ExitMatch) MessageType() MessageType            { return ExitMatchMessageType }

// EncodeMessage builds the wire frame for a message.
func EncodeMessage(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%s: payload marshal: %w", msg.MessageType(), err)
	}

	raw, err := json.Marshal(Envelope{
		Type:    msg.MessageType(),
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: envelope marshal: %w", msg.MessageType(), err)
	}

	return raw, nil
}

// DecodeMessage parses a wire frame into its typed message.
func DecodeMessage(raw []byte) (Message, error) {
	env := Envelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("envelope unmarshal: %w", err)
	}

	var msg Message
	switch env.Type {
	case MatchStartMessageType:
		msg = &MatchStart{}
	case TransmitStateMessageType:
		msg = &TransmitState{}
	case SignalErrorMessageType:
		msg = &SignalError{}
	case OpponentDisconnectedMessageType:
		msg = &OpponentDisconnected{}
	case OpponentEmoteMessageType:
		msg = &OpponentEmote{}
	case PlayCardMessageType:
		msg = &PlayCard{}
	case PassTurnMessageType:
		msg = &PassTurn{}
	case MulliganMessageType:
		msg = &Mulligan{}
	case EmoteMessageType:
		msg = &Emote{}
	case ExitMatchMessageType:
		msg = &ExitMatch{}
	default:
		return nil, fmt.Errorf("%q: %w", env.Type, ErrUnknownMessageType)
	}

	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, msg); err != nil {
			return nil, fmt.Errorf("%s: payload unmarshal: %w", env.Type, err)
		}
	}

	return msg, nil
}
