package toolutils

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ReadYaml decodes file into dest in strict mode; unknown keys are errors.
func ReadYaml(dest any, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("unable to open configuration file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f, yaml.Strict())
	if err = dec.Decode(dest); err != nil {
		return fmt.Errorf("unable to parse configuration file: %w", err)
	}
	return nil
}
