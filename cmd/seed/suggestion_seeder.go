package main

import (
	"context"

	"roomlink-be/internal/model"
	"roomlink-be/internal/repository/contract"

	"github.com/fatih/color"
)

// SeedCommandSuggestions populates the hint table with Windows shortcuts.
// Existing keywords are left untouched so the seeder is safe to rerun.
func SeedCommandSuggestions(ctx context.Context, repo contract.SuggestionRepository) {
	suggestions := []model.CommandSuggestion{
		// System / core
		{Keyword: "task manager", Suggestion: "Ctrl + Shift + Esc", Description: "Open Task Manager instantly."},
		{Keyword: "lock", Suggestion: "Win + L", Description: "Lock your PC."},
		{Keyword: "run", Suggestion: "Win + R", Description: "Open Run dialog."},
		{Keyword: "settings", Suggestion: "Win + I", Description: "Open Windows Settings."},
		{Keyword: "file explorer", Suggestion: "Win + E", Description: "Open File Explorer."},
		{Keyword: "search", Suggestion: "Win + S", Description: "Open Windows Search."},
		{Keyword: "show desktop", Suggestion: "Win + D", Description: "Minimize all windows."},
		{Keyword: "minimize all", Suggestion: "Win + M", Description: "Minimize all windows."},
		{Keyword: "restore windows", Suggestion: "Win + Shift + M", Description: "Restore minimized windows."},
		{Keyword: "close window", Suggestion: "Alt + F4", Description: "Close active window."},
		{Keyword: "switch apps", Suggestion: "Alt + Tab", Description: "Switch between applications."},
		{Keyword: "task view", Suggestion: "Win + Tab", Description: "Open Task View."},
		{Keyword: "new desktop", Suggestion: "Win + Ctrl + D", Description: "Create virtual desktop."},
		{Keyword: "close desktop", Suggestion: "Win + Ctrl + F4", Description: "Close virtual desktop."},
		{Keyword: "clipboard history", Suggestion: "Win + V", Description: "Open Clipboard History."},
		{Keyword: "emoji panel", Suggestion: "Win + .", Description: "Open Emoji Picker."},
		{Keyword: "magnifier", Suggestion: "Win + Plus (+)", Description: "Zoom screen."},
		{Keyword: "narrator", Suggestion: "Win + Ctrl + Enter", Description: "Enable Narrator."},

		// Screen / display
		{Keyword: "screenshot", Suggestion: "Win + Shift + S", Description: "Open Snipping Tool."},
		{Keyword: "project display", Suggestion: "Win + P", Description: "Switch display mode."},
		{Keyword: "rotate screen", Suggestion: "Ctrl + Alt + Arrow", Description: "Rotate display orientation."},
		{Keyword: "fullscreen", Suggestion: "F11", Description: "Toggle fullscreen mode."},

		// Window management
		{Keyword: "snap left", Suggestion: "Win + Left Arrow", Description: "Snap window left."},
		{Keyword: "snap right", Suggestion: "Win + Right Arrow", Description: "Snap window right."},
		{Keyword: "maximize window", Suggestion: "Win + Up Arrow", Description: "Maximize active window."},
		{Keyword: "minimize window", Suggestion: "Win + Down Arrow", Description: "Minimize active window."},
		{Keyword: "move window monitor", Suggestion: "Win + Shift + Arrow", Description: "Move window across monitors."},

		// Text / editing
		{Keyword: "copy", Suggestion: "Ctrl + C", Description: "Copy selected item."},
		{Keyword: "paste", Suggestion: "Ctrl + V", Description: "Paste item."},
		{Keyword: "cut", Suggestion: "Ctrl + X", Description: "Cut selection."},
		{Keyword: "undo", Suggestion: "Ctrl + Z", Description: "Undo last action."},
		{Keyword: "redo", Suggestion: "Ctrl + Y", Description: "Redo last action."},
		{Keyword: "select all", Suggestion: "Ctrl + A", Description: "Select everything."},
		{Keyword: "save", Suggestion: "Ctrl + S", Description: "Save file."},
		{Keyword: "find", Suggestion: "Ctrl + F", Description: "Find text."},
		{Keyword: "replace", Suggestion: "Ctrl + H", Description: "Replace text."},
		{Keyword: "new document", Suggestion: "Ctrl + N", Description: "Create new document."},
		{Keyword: "open file", Suggestion: "Ctrl + O", Description: "Open file."},
		{Keyword: "print", Suggestion: "Ctrl + P", Description: "Print document."},

		// Browser
		{Keyword: "new tab", Suggestion: "Ctrl + T", Description: "Open new tab."},
		{Keyword: "close tab", Suggestion: "Ctrl + W", Description: "Close tab."},
		{Keyword: "reopen tab", Suggestion: "Ctrl + Shift + T", Description: "Reopen closed tab."},
		{Keyword: "incognito", Suggestion: "Ctrl + Shift + N", Description: "Open private window."},
		{Keyword: "downloads", Suggestion: "Ctrl + J", Description: "Open downloads."},
		{Keyword: "history", Suggestion: "Ctrl + H", Description: "Open history."},
		{Keyword: "refresh page", Suggestion: "F5", Description: "Refresh page."},

		// Troubleshooting
		{Keyword: "pc frozen", Suggestion: "Ctrl + Alt + Delete", Description: "Open security options."},
		{Keyword: "app not responding", Suggestion: "Alt + F4", Description: "Close frozen application."},
		{Keyword: "slow computer", Suggestion: "Ctrl + Shift + Esc", Description: "Check Task Manager."},
		{Keyword: "force close", Suggestion: "Alt + F4", Description: "Force close window."},

		// Power user
		{Keyword: "rename file", Suggestion: "F2", Description: "Rename selected file."},
		{Keyword: "delete file", Suggestion: "Delete", Description: "Move file to Recycle Bin."},
		{Keyword: "permanent delete", Suggestion: "Shift + Delete", Description: "Delete permanently."},
		{Keyword: "new folder", Suggestion: "Ctrl + Shift + N", Description: "Create new folder."},
		{Keyword: "properties", Suggestion: "Alt + Enter", Description: "Open file properties."},
		{Keyword: "refresh desktop", Suggestion: "F5", Description: "Refresh desktop."},

		// Extended practical commands
		{Keyword: "open explorer", Suggestion: "Win + E", Description: "Open File Explorer."},
		{Keyword: "open notifications", Suggestion: "Win + N", Description: "Open Notification Center."},
		{Keyword: "quick settings", Suggestion: "Win + A", Description: "Open Quick Settings."},
		{Keyword: "voice typing", Suggestion: "Win + H", Description: "Start dictation."},
		{Keyword: "game bar", Suggestion: "Win + G", Description: "Open Xbox Game Bar."},
	}

	createdCount := 0
	for i := range suggestions {
		created, err := repo.GetOrCreate(ctx, &suggestions[i])
		if err != nil {
			color.Red("Failed to seed keyword %q: %v", suggestions[i].Keyword, err)
			continue
		}
		if created {
			createdCount++
		}
	}

	color.Green("Successfully added %d shortcuts (%d already present).", createdCount, len(suggestions)-createdCount)
}
