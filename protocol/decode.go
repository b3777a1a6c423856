package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	uuid "github.com/satori/go.uuid"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformed      = errors.New("malformed message")
)

// DecodeInbound parses a JSON object sent by a client. Commands are given by
// name and cards by their UUID string; a missing or empty card is uuid.Nil.
func DecodeInbound(b []byte) (InboundMessage, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeInboundMap(raw)
}

// DecodeInboundMap decodes an already parsed message
func DecodeInboundMap(raw map[string]interface{}) (InboundMessage, error) {
	if name, ok := raw["command"].(string); ok {
		if _, known := NameToCmd[name]; !known {
			return InboundMessage{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
		}
	}

	var msg InboundMessage
	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToCmdHookFunc(),
			stringToUUIDHookFunc(),
		),
		Result:  &msg,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return InboundMessage{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, nil
}

func stringToCmdHookFunc() mapstructure.DecodeHookFuncType {
	cmdType := reflect.TypeOf(Null)
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != cmdType {
			return data, nil
		}
		cmd, ok := NameToCmd[data.(string)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, data)
		}
		return cmd, nil
	}
}

func stringToUUIDHookFunc() mapstructure.DecodeHookFuncType {
	uuidType := reflect.TypeOf(uuid.Nil)
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != uuidType {
			return data, nil
		}
		s := data.(string)
		if s == "" {
			return uuid.Nil, nil
		}
		return uuid.FromString(s)
	}
}
