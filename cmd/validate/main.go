package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir>\n", os.Args[0])
		os.Exit(1)
	}

	dataDir := os.Args[1]
	validator := &DataValidator{}

	if err := validator.validateDataDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Data directory is valid!")
}

type DataValidator struct {
	errors []string
}

func (v *DataValidator) validateDataDir(dataDir string) error {
	fmt.Printf("Validating %s...\n", dataDir)
	v.errors = nil

	if err := v.validateTables(filepath.Join(dataDir, "tables.json")); err != nil {
		v.errors = append(v.errors, err.Error())
	}
	v.validatePCs(filepath.Join(dataDir, "pcs"))

	if len(v.errors) > 0 {
		return fmt.Errorf("%d problem(s) found:\n  - %s", len(v.errors), strings.Join(v.errors, "\n  - "))
	}
	return nil
}

func (v *DataValidator) validateTables(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("  %s not present, built-in defaults will be used\n", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !json.Valid(data) {
		return fmt.Errorf("%s contains invalid JSON", path)
	}

	var tables procgen.Tables
	if err := json.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("  tables.json: %d monsters, %d prefix affixes, %d suffix affixes, %d npcs\n",
		len(tables.Monsters), len(tables.PrefixAffixes), len(tables.SuffixAffixes), len(tables.NPCs))
	return nil
}

func (v *DataValidator) validatePCs(pcDir string) {
	entries, err := os.ReadDir(pcDir)
	if err != nil {
		if os.IsNotExist(err) {
			v.errors = append(v.errors, fmt.Sprintf("pcs directory missing: %s", pcDir))
			return
		}
		v.errors = append(v.errors, fmt.Sprintf("failed to read pcs directory: %v", err))
		return
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		count++

		name := strings.TrimSuffix(entry.Name(), ".json")
		if !isValidPCFilename(name) {
			v.errors = append(v.errors, fmt.Sprintf("pc filename '%s' must be lowercase snake_case (e.g., my_hero.json)", entry.Name()))
		}

		path := filepath.Join(pcDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			v.errors = append(v.errors, fmt.Sprintf("failed to read %s: %v", path, err))
			continue
		}

		var spec actor.PCSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			v.errors = append(v.errors, fmt.Sprintf("failed to parse %s: %v", path, err))
			continue
		}
		if spec.Name == "" {
			v.errors = append(v.errors, fmt.Sprintf("%s: name is required", path))
		}
		if _, err := actor.NewPCFromSpec(&spec); err != nil {
			v.errors = append(v.errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		fmt.Printf("  pcs/%s: ok\n", entry.Name())
	}

	if count == 0 {
		v.errors = append(v.errors, fmt.Sprintf("no pc specs found in %s", pcDir))
	}
}

var pcFilenamePattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func isValidPCFilename(name string) bool {
	return pcFilenamePattern.MatchString(name)
}
