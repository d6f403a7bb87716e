package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// The overrides file keeps variable values (API keys in particular)
// outside the HCL config so they never get committed with it. Format is
// one name=value per line; blank lines and #-comments are ignored.

// VarsFilePath returns the location of the overrides file,
// ~/.codewizard/vars.txt.
func VarsFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codewizard", "vars.txt"), nil
}

// ReadVarsFile parses the overrides file. A missing file is an empty
// set, not an error.
func ReadVarsFile() (map[string]string, error) {
	vars := make(map[string]string)

	path, err := VarsFilePath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return vars, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[name] = value
	}
	return vars, scanner.Err()
}

// WriteVarsFile replaces the overrides file with the given set, one
// name=value line each in sorted order. The file is created user-only:
// it holds secrets.
func WriteVarsFile(vars map[string]string) error {
	path, err := VarsFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf strings.Builder
	for _, name := range names {
		fmt.Fprintf(&buf, "%s=%s\n", name, vars[name])
	}
	return os.WriteFile(path, []byte(buf.String()), 0600)
}

// ResolveVariableValue returns the effective value for a variable: the
// overrides file wins over the default declared in config.
func ResolveVariableValue(v *Variable) (string, error) {
	fileVars, err := ReadVarsFile()
	if err != nil {
		return "", err
	}
	if value, ok := fileVars[v.Name]; ok {
		return value, nil
	}
	return v.Default, nil
}
