package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Check is the outcome of one harness check: either a result or the
// message of the error that aborted it. It serializes as the result itself
// or as {"error": "..."}.
type Check[T any] struct {
	Value *T
	Err   string
}

// Passed wraps a successful result.
func Passed[T any](v T) Check[T] {
	return Check[T]{Value: &v}
}

// Failed records err as the check outcome.
func Failed[T any](err error) Check[T] {
	if err == nil {
		err = fmt.Errorf("check failed without an error")
	}
	return Check[T]{Err: err.Error()}
}

// OK reports whether the check produced a result.
func (c Check[T]) OK() bool { return c.Value != nil }

type checkError struct {
	Error string `json:"error" yaml:"error"`
}

func (c Check[T]) MarshalJSON() ([]byte, error) {
	if c.Value == nil {
		return json.Marshal(checkError{Error: c.Err})
	}
	return json.Marshal(c.Value)
}

func (c *Check[T]) UnmarshalJSON(b []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err == nil && len(probe) == 1 {
		if raw, ok := probe["error"]; ok {
			c.Value = nil
			return json.Unmarshal(raw, &c.Err)
		}
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	c.Value, c.Err = &v, ""
	return nil
}

func (c Check[T]) MarshalYAML() (interface{}, error) {
	if c.Value == nil {
		return checkError{Error: c.Err}, nil
	}
	return c.Value, nil
}

func (c *Check[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode && len(n.Content) == 2 && n.Content[0].Value == "error" {
		c.Value = nil
		return n.Content[1].Decode(&c.Err)
	}
	var v T
	if err := n.Decode(&v); err != nil {
		return err
	}
	c.Value, c.Err = &v, ""
	return nil
}
