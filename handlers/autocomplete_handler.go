package handlers

import (
	"community-bot/bot"
	"community-bot/model"
	"community-bot/rulestore"
	"community-bot/utils"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const maxAutocompleteChoices = 25

func handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	focused := utils.FocusedOption(data.Options)
	if focused == nil || focused.Name != "rule" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Only /rule-view offers inactive rules.
	filter := rulestore.Filter{IncludeInactive: data.Name == "rule-view"}
	list, err := b.Rules.ListRules(ctx, filter)
	if err != nil {
		log.Printf("Autocomplete: failed to list rules: %v", err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: ruleChoices(list, focused.StringValue()),
		},
	})
	if err != nil {
		log.Printf("Error responding to autocomplete request: %v", err)
	}
}

// ruleChoices matches typed text against rule ids and titles. Id prefix
// matches come first.
func ruleChoices(list []model.Rule, typed string) []*discordgo.ApplicationCommandOptionChoice {
	q := strings.ToLower(strings.TrimSpace(typed))
	var byID, byTitle []*discordgo.ApplicationCommandOptionChoice
	for _, r := range list {
		choice := &discordgo.ApplicationCommandOptionChoice{
			Name:  truncateChoice(fmt.Sprintf("%s · %s", r.ID, r.Title)),
			Value: r.ID,
		}
		switch {
		case q == "" || strings.HasPrefix(strings.ToLower(r.ID), q):
			byID = append(byID, choice)
		case strings.Contains(strings.ToLower(r.Title), q):
			byTitle = append(byTitle, choice)
		}
	}
	choices := append(byID, byTitle...)
	if len(choices) > maxAutocompleteChoices {
		choices = choices[:maxAutocompleteChoices]
	}
	return choices
}

// Choice names are limited to 100 characters.
func truncateChoice(s string) string {
	r := []rune(s)
	if len(r) <= 100 {
		return s
	}
	return string(r[:97]) + "..."
}
