// Package ticket handles the /ticket command and the buttons on ticket posts.
package ticket

import (
	"community-bot/bot"
	"community-bot/model"
	"community-bot/tickets"
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 10 * time.Second

// HandleTicketCommand dispatches the /ticket subcommands.
func HandleTicketCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
		return
	}
	sub := options[0]
	opts := utils.OptionMap(sub.Options)

	switch sub.Name {
	case "open":
		handleOpen(s, i, b, tickets.OpenRequest{
			MemberID:    i.Member.User.ID,
			Category:    utils.StringOption(opts, "category"),
			Urgency:     utils.StringOption(opts, "urgency"),
			Description: utils.StringOption(opts, "description"),
		})
	case "close":
		handleClose(s, i, b, utils.StringOption(opts, "id"), utils.StringOption(opts, "reason"))
	case "list":
		handleList(s, i, b)
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func handleOpen(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, req tickets.OpenRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	t, err := b.Desk.Open(ctx, req)
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	utils.SendSimpleResponse(s, i, OpenedMessage(t))

	if t.ChannelID == "" {
		log.Printf("Ticket %s has no channel to post in", t.ID)
		return
	}
	msg := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{TicketEmbed(t)},
		Components: TicketButtons(t.ID),
	}
	if t.Priority >= tickets.CriticalPriority && b.Config.Roles.Staff != "" {
		msg.Content = fmt.Sprintf("<@&%s> high priority ticket", b.Config.Roles.Staff)
		msg.AllowedMentions = &discordgo.MessageAllowedMentions{Roles: []string{b.Config.Roles.Staff}}
	}
	if _, err := s.ChannelMessageSendComplex(t.ChannelID, msg); err != nil {
		log.Printf("Failed to post ticket %s to channel %s: %v", t.ID, t.ChannelID, err)
	}
}

// closeAs closes the ticket when the actor owns it or is staff.
func closeAs(ctx context.Context, b *bot.Bot, id, actorID string, actorLevel utils.Level, reason string) (*model.Ticket, error) {
	t, err := b.Desk.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.MemberID != actorID && actorLevel < utils.HelperLevel {
		return nil, errNotYours
	}
	return b.Desk.Close(ctx, id, actorID, reason)
}

var errNotYours = errors.New("only the ticket owner or staff can close a ticket")

func closeMessage(err error) string {
	if errors.Is(err, errNotYours) {
		return "You can only close your own tickets."
	}
	return utils.UserMessage(err)
}

func handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, id, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	actorID := i.Member.User.ID
	t, err := closeAs(ctx, b, id, actorID, b.MemberLevel(i), reason)
	if err != nil {
		utils.SendErrorResponse(s, i, closeMessage(err))
		return
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("🔒 Ticket `%s` closed.", t.ID))
	afterClose(ctx, s, b, t, actorID)
}

func afterClose(ctx context.Context, s *discordgo.Session, b *bot.Bot, t *model.Ticket, actorID string) {
	if t.MemberID != actorID {
		if err := utils.DirectMessage(s, t.MemberID, closedNotice(t)); err != nil {
			log.Printf("Failed to notify %s that ticket %s closed: %v", t.MemberID, t.ID, err)
		}
	}
	entry := model.ActionLog{ActionType: "ticket_close", StaffID: actorID, TargetID: t.ID, Details: closedNotice(t)}
	if err := database.LogAction(ctx, b.DB, entry); err != nil {
		log.Printf("Failed to write action log: %v", err)
	}
}

func handleList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var (
		list  []model.Ticket
		err   error
		title string
	)
	if b.MemberLevel(i) >= utils.HelperLevel {
		list, err = b.Desk.ListOpen(ctx)
		title = "🎫 Open tickets"
	} else {
		list, err = b.Desk.ListForMember(ctx, i.Member.User.ID, true)
		title = "🎫 Your open tickets"
	}
	if err != nil {
		log.Printf("Failed to list tickets: %v", err)
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{ListEmbed(title, list, time.Now())},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to ticket list: %v", err)
	}
}

// HandleClaimButton marks a ticket as being handled. Staff only.
func HandleClaimButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	id, ok := ParseButtonID(i.MessageComponentData().CustomID, ClaimPrefix)
	if !ok || !b.RequireLevel(s, i, utils.HelperLevel) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.Desk.Touch(ctx, id); err != nil {
		utils.SendErrorResponse(s, i, utils.UserMessage(err))
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("🙋 <@%s> is handling ticket `%s`.", i.Member.User.ID, id))
}

// HandleCloseButton closes the ticket from its staff post and drops the buttons.
func HandleCloseButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	id, ok := ParseButtonID(i.MessageComponentData().CustomID, ClosePrefix)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	actorID := i.Member.User.ID
	t, err := closeAs(ctx, b, id, actorID, b.MemberLevel(i), "")
	if err != nil {
		utils.SendErrorResponse(s, i, closeMessage(err))
		return
	}

	embed := TicketEmbed(t)
	embed.Color = 0x95A5A6
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Closed by " + actorID}
	empty := []discordgo.MessageComponent{}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: empty,
		},
	})
	if err != nil {
		log.Printf("Error updating ticket post: %v", err)
	}
	afterClose(ctx, s, b, t, actorID)
}
