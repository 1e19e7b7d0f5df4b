package seed

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SeedConfig represents the top-level structure of the seed file.
// Domains and parameters are YAML mappings whose order is kept, so they are decoded
// through yaml.Node rather than Go maps.
type SeedConfig struct {
	Domains DomainList `yaml:"domains"`
}

// DomainList is the ordered content of the "domains" mapping
type DomainList []DomainSeed

// DomainSeed contains the default suggestions of one domain
type DomainSeed struct {
	Domain  string
	Params  ParamList
	Aliases []string
}

// ParamList is an ordered mapping of parameter name to values
type ParamList []ParamSeed

// ParamSeed holds the values of one parameter, a scalar being a single value
type ParamSeed struct {
	Name   string
	Values []string
}

type domainProps struct {
	Params  ParamList `yaml:"params"`
	Aliases []string  `yaml:"aliases,omitempty"`
}

// UnmarshalYAML decodes a mapping of domain -> props, keeping document order
func (l *DomainList) UnmarshalYAML(value *yaml.Node) error {
	return decodeMapping(value, func(key string, v *yaml.Node) error {
		var props domainProps
		if err := v.Decode(&props); err != nil {
			return err
		}
		*l = append(*l, DomainSeed{Domain: key, Params: props.Params, Aliases: props.Aliases})
		return nil
	})
}

// UnmarshalYAML decodes a mapping of name -> value(s), keeping document order
func (l *ParamList) UnmarshalYAML(value *yaml.Node) error {
	return decodeMapping(value, func(key string, v *yaml.Node) error {
		var values []string
		switch v.Kind {
		case yaml.ScalarNode:
			if v.Tag != "!!null" {
				values = []string{v.Value}
			}
		case yaml.SequenceNode:
			if err := v.Decode(&values); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: values of %q must be a string or a list", v.Line, key)
		}
		*l = append(*l, ParamSeed{Name: key, Values: values})
		return nil
	})
}

func decodeMapping(value *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		if err := fn(key, value.Content[i+1]); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}
