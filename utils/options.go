package utils

import "github.com/bwmarrin/discordgo"

// OptionMap indexes interaction options by name.
func OptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// StringOption returns the named string option, or "" when it is absent.
func StringOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// IntOption returns the named integer option, or def when it is absent.
func IntOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, def int64) int64 {
	if opt, ok := m[name]; ok {
		return opt.IntValue()
	}
	return def
}

// FocusedOption returns the option the user is typing into during autocomplete.
func FocusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range opts {
		if opt.Focused {
			return opt
		}
		if f := FocusedOption(opt.Options); f != nil {
			return f
		}
	}
	return nil
}
