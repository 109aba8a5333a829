package output

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// confirmTemplates keeps the y/n prompts visually consistent with the
// select templates used elsewhere for node/version pickers.
var confirmTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} ",
	Valid:   "{{ . | cyan }} ",
	Invalid: "{{ . | red }} ",
	Success: "{{ . | faint }} ",
}

// ConfirmPrompt asks for user confirmation and returns true if confirmed.
// The default answer is "no".
func ConfirmPrompt(message string) (bool, error) {
	return ConfirmPromptDefault(message, false)
}

// ConfirmPromptDefault asks for confirmation with a default value, applied
// when the user presses enter without typing anything.
func ConfirmPromptDefault(message string, defaultYes bool) (bool, error) {
	suffix := "y/N"
	if defaultYes {
		suffix = "Y/n"
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", message, suffix),
		Templates: confirmTemplates,
		Validate: func(input string) error {
			switch input {
			case "", "y", "Y", "yes", "n", "N", "no":
				return nil
			default:
				return fmt.Errorf("answer y or n")
			}
		},
	}

	result, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return false, nil
		}
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	switch result {
	case "":
		return defaultYes, nil
	case "y", "Y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// StringPrompt asks for a string input.
func StringPrompt(message string) (string, error) {
	prompt := promptui.Prompt{Label: message}
	result, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return "", nil
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return result, nil
}

// StringPromptDefault asks for a string input with a default value, used
// when the user submits an empty line.
func StringPromptDefault(message, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   fmt.Sprintf("%s [%s]", message, defaultValue),
		Default: defaultValue,
	}
	result, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return defaultValue, nil
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if result == "" {
		return defaultValue, nil
	}
	return result, nil
}

// SelectPrompt asks the user to select from a list of options and returns
// the chosen index.
func SelectPrompt(message string, options []string) (int, error) {
	prompt := promptui.Select{
		Label: message,
		Items: options,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✓ {{ . | green }}",
		},
	}

	index, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return -1, fmt.Errorf("selection cancelled")
		}
		return -1, fmt.Errorf("failed to read response: %w", err)
	}
	return index, nil
}
