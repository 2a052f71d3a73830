package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ashureev/careercompass/internal/assessment"
)

var clientFrameSchema = gojsonschema.NewStringLoader(fmt.Sprintf(`{
	"type": "object",
	"required": ["type"],
	"properties": {
		"type": {"type": "string", "enum": ["submit", "restart", "snapshot", "ping"]},
		"content": {"type": "string", "maxLength": %d}
	},
	"additionalProperties": false
}`, assessment.MaxAnswerLength))

var compiledFrameSchema = mustCompile(clientFrameSchema)

var errInvalidFrame = errors.New("invalid message")

func mustCompile(loader gojsonschema.JSONLoader) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		panic("realtime: invalid client frame schema: " + err.Error())
	}
	return schema
}

// decodeClientMessage validates a raw client frame and decodes it.
func decodeClientMessage(data []byte) (clientMessage, error) {
	result, err := compiledFrameSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return clientMessage{}, fmt.Errorf("%w: %v", errInvalidFrame, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return clientMessage{}, fmt.Errorf("%w: %s", errInvalidFrame, strings.Join(errs, "; "))
	}

	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return clientMessage{}, fmt.Errorf("%w: %v", errInvalidFrame, err)
	}
	return msg, nil
}
