// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/Shardj/code-genie-cli/internal/tools"
	"github.com/Shardj/code-genie-cli/internal/util"
)

// FormatUserPrompt frames user input as an invocation of the tool, the way
// the model is told to expect it.
func FormatUserPrompt(input string) string {
	return `$ code-genie-cli "` + util.EscapeDoubleQuotes(util.NormalizeInput(input)) + `"`
}

// FeedbackMessage builds the message that returns a script's output to the
// model. Failures carry a hint on how to recover.
func FeedbackMessage(res tools.Result, pip string) string {
	if res.Success {
		return "The code executed successfully. Output:\n" + res.Output
	}
	return "The code execution failed. Output:\n" + res.Output + "\n\n" + remediationHint(pip)
}

func remediationHint(pip string) string {
	if pip == "" {
		pip = "pip"
	}
	return fmt.Sprintf("If a module is missing, install it with os.system(\"%s install <package>\") and run the code again. Otherwise fix the error and provide corrected code.", pip)
}
