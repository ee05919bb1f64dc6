package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/wippyai/pdfium-bridge/errors"
)

// Schema returns the JSON schema of Config as indented JSON.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := r.Reflect(&Config{})
	s.Title = "pdfbridge configuration"

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Config("marshal schema", err)
	}
	return out, nil
}
