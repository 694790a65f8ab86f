// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// maxListedEntries caps the directory listing embedded in the system prompt.
const maxListedEntries = 50

// versionProbeTimeout bounds "<interpreter> --version".
const versionProbeTimeout = 3 * time.Second

// =============================================================================
// SYSTEM INFORMATION
// =============================================================================

// SystemInfo describes the host the generated code will run on.
type SystemInfo struct {
	OS                 string
	Kernel             string
	Arch               string
	Interpreter        string
	InterpreterVersion string
	WorkDir            string
	Entries            []string
	MoreEntries        int
	Pip                string
}

// CollectSystemInfo gathers host details for the system prompt. Lookups
// that fail leave their field as "unknown"; the prompt is still usable.
func CollectSystemInfo(ctx context.Context, interpreter string) SystemInfo {
	info := SystemInfo{
		OS:          runtime.GOOS,
		Kernel:      kernelVersion(),
		Arch:        runtime.GOARCH,
		Interpreter: interpreter,
		Pip:         DetectPip(),
	}
	info.InterpreterVersion = interpreterVersion(ctx, interpreter)

	wd, err := os.Getwd()
	if err != nil {
		wd = "unknown"
	}
	info.WorkDir = wd

	if entries, err := os.ReadDir("."); err == nil {
		for i, e := range entries {
			if i == maxListedEntries {
				info.MoreEntries = len(entries) - maxListedEntries
				break
			}
			name := e.Name()
			if e.IsDir() {
				name += string(filepath.Separator)
			}
			info.Entries = append(info.Entries, name)
		}
	}
	return info
}

// DetectPip returns "pip3" when it is on PATH, otherwise "pip".
func DetectPip() string {
	if _, err := exec.LookPath("pip3"); err == nil {
		return "pip3"
	}
	return "pip"
}

func interpreterVersion(ctx context.Context, interpreter string) string {
	if interpreter == "" {
		return "unknown"
	}
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, interpreter, "--version").CombinedOutput()
	if err != nil {
		return "unknown"
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "unknown"
	}
	return v
}

// =============================================================================
// LANGUAGE
// =============================================================================

// languageFor maps an interpreter to a display name and a fence tag.
func languageFor(interpreter string) (name, tag string) {
	if strings.TrimSpace(interpreter) == "" {
		return "Python", "python"
	}
	base := strings.ToLower(filepath.Base(interpreter))
	base = strings.TrimSuffix(base, ".exe")
	switch {
	case strings.HasPrefix(base, "python"), base == "py":
		return "Python", "python"
	case base == "sh", base == "bash", base == "zsh", base == "dash":
		return "shell", "bash"
	case base == "node", base == "nodejs", base == "deno", base == "bun":
		return "JavaScript", "javascript"
	case base == "ruby":
		return "Ruby", "ruby"
	case base == "pwsh", base == "powershell":
		return "PowerShell", "powershell"
	}
	return base, base
}

// =============================================================================
// SYSTEM PROMPT
// =============================================================================

// BuildSystemPrompt renders the system turn that opens every session.
func BuildSystemPrompt(info SystemInfo) string {
	lang, tag := languageFor(info.Interpreter)

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are Code Genie, a command-line assistant. You help the user by writing %s code that runs directly on their machine. Answer with %s only.\n\n", lang, lang)

	sb.WriteString("System information:\n")
	fmt.Fprintf(&sb, "OS: %s (%s)\n", info.OS, info.Arch)
	fmt.Fprintf(&sb, "Kernel: %s\n", info.Kernel)
	fmt.Fprintf(&sb, "Interpreter: %s (%s)\n", info.Interpreter, info.InterpreterVersion)
	fmt.Fprintf(&sb, "Current directory: %s\n", info.WorkDir)
	fmt.Fprintf(&sb, "Directory contents: %s", strings.Join(info.Entries, ", "))
	if info.MoreEntries > 0 {
		fmt.Fprintf(&sb, " (and %d more)", info.MoreEntries)
	}
	sb.WriteString("\n\n")

	sb.WriteString("Rules:\n")
	rules := []string{
		fmt.Sprintf("To run code on the user's machine, put it inside a fenced code block tagged %s, as in the example below. Every fenced block in one reply is joined and run as a single script.", tag),
		"Do not ask whether the user wants something done. Do it and say what you did.",
		"Choose file paths and names yourself when the user does not give them, e.g. save downloads to the Downloads directory.",
		"Speak with certainty that the code solves the request. When unsure, try anyway.",
		"When the user only wants to talk, answer in a friendly way without code.",
		"Keep replies short and do not repeat yourself.",
		"Programs you open must start in a new session so they survive the terminal closing.",
	}
	if tag == "python" {
		rules = append(rules, fmt.Sprintf("Install missing packages from Python with os.system(\"%s install <package>\"), never with shell syntax.", info.Pip))
	}
	for _, r := range rules {
		fmt.Fprintf(&sb, "* %s\n", r)
	}
	sb.WriteString("\n")

	sb.WriteString("After a script runs, the user may send you its output or its error. Use it to continue or to fix the code.\n\n")

	sb.WriteString("Example. The user asks \"How much free disk space do I have?\" and you reply:\n")
	sb.WriteString("Here is the free space on each of your drives:\n\n")
	sb.WriteString("```" + tag + "\n")
	sb.WriteString(exampleFor(tag))
	sb.WriteString("\n```\n")
	return sb.String()
}

func exampleFor(tag string) string {
	switch tag {
	case "python":
		return "import shutil\n\ntotal, used, free = shutil.disk_usage(\"/\")\nprint(f\"Free: {free // 2**30} GiB of {total // 2**30} GiB\")"
	case "bash":
		return "df -h"
	case "javascript":
		return "const { statfsSync } = require('fs');\nconst s = statfsSync('/');\nconsole.log(`Free: ${(s.bavail * s.bsize / 2 ** 30).toFixed(1)} GiB`);"
	case "powershell":
		return "Get-PSDrive -PSProvider FileSystem"
	}
	return "# print the free disk space here"
}
