package files

import (
	"encoding/json"

	"github.com/apex/log"
	yaml "gopkg.in/yaml.v2"
)

// ReadJSON reads and unmarshals a JSON file into v.
func ReadJSON(v interface{}, path string) error {
	return ReadUnmarshal(v, path, json.Unmarshal)
}

// ReadYAML reads and unmarshals a YAML file into v.
func ReadYAML(v interface{}, path string) error {
	return ReadUnmarshal(v, path, yaml.Unmarshal)
}

// An UnmarshalFunc decodes raw file contents into v.
type UnmarshalFunc func(data []byte, v interface{}) error

// ReadUnmarshal reads the file at path and decodes it with unmarshal.
func ReadUnmarshal(v interface{}, path string, unmarshal UnmarshalFunc) error {
	contents, err := Read(path)
	if err != nil {
		return err
	}
	err = unmarshal(contents, v)
	if err != nil {
		log.WithError(err).WithField("file", path).Debug("could not parse file")
	}
	return err
}
