// Package rules handles the rule lookup and administration commands.
package rules

import (
	"community-bot/bot"
	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// SearchPagePrefix prefixes the custom ids of search result page buttons.
const SearchPagePrefix = "rule_search"

const commandTimeout = 10 * time.Second

func perPage(b *bot.Bot) int {
	if b.Config.RulesSearchLimit > 0 {
		return b.Config.RulesSearchLimit
	}
	return 5
}

// HandleSearch answers /rule-search with the first page of results.
func HandleSearch(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	query := utils.StringOption(opts, "query")
	category := utils.StringOption(opts, "category")

	results := b.Index.Search(query, category)
	size := perPage(b)
	embed := SearchEmbed(query, results, 1, size)
	arg := category + "|" + query

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: utils.CreatePaginationComponents(1, utils.PageCount(len(results), size), SearchPagePrefix, arg),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to rule search: %v", err)
	}
}

// HandleSearchPage answers a page button on a search result message.
func HandleSearchPage(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	page, arg, ok := utils.ParsePaginationID(i.MessageComponentData().CustomID, SearchPagePrefix)
	if !ok {
		return
	}
	category, query, _ := strings.Cut(arg, "|")

	results := b.Index.Search(query, category)
	size := perPage(b)
	pages := utils.PageCount(len(results), size)
	if page > pages {
		page = pages
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{SearchEmbed(query, results, page, size)},
			Components: utils.CreatePaginationComponents(page, pages, SearchPagePrefix, arg),
		},
	})
	if err != nil {
		log.Printf("Error updating rule search page: %v", err)
	}
}

// HandleView answers /rule-view.
func HandleView(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	id := utils.StringOption(utils.OptionMap(i.ApplicationCommandData().Options), "rule")
	rule, err := b.Rules.GetRule(ctx, id)
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	cat, err := b.Rules.GetCategory(ctx, rule.Category)
	if err != nil {
		log.Printf("Could not load category %s: %v", rule.Category, err)
		cat = nil
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{RuleEmbed(rule, cat)}},
	})
	if err != nil {
		log.Printf("Error responding to rule view: %v", err)
	}
}

// HandleDeactivate answers /rule-deactivate. Admins only.
func HandleDeactivate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !b.RequireLevel(s, i, utils.AdminLevel) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	id := utils.StringOption(utils.OptionMap(i.ApplicationCommandData().Options), "rule")
	actor := i.Member.User.ID
	if err := b.Rules.DeactivateRule(ctx, id, actor); err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	if err := b.Index.Rebuild(ctx); err != nil {
		log.Printf("Failed to rebuild search index after deactivating %s: %v", id, err)
	}

	entry := model.ActionLog{ActionType: "rule_deactivate", StaffID: actor, TargetID: id, Details: "Rule deactivated"}
	if err := database.LogAction(ctx, b.DB, entry); err != nil {
		log.Printf("Failed to write action log: %v", err)
	}
	utils.LogInfo(s, b.Config.LogChannelID, "Rules", "Deactivate", fmt.Sprintf("<@%s> deactivated rule `%s`", actor, id))
	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Rule `%s` is now inactive. Existing violation records are kept.", id))
}

// HandleStats answers /rule-stats.
func HandleStats(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	stats, err := b.Rules.CategoryStats(ctx)
	if err != nil {
		log.Printf("Failed to load rule stats: %v", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{StatsEmbed(stats)}},
	})
	if err != nil {
		log.Printf("Error responding to rule stats: %v", err)
	}
}
